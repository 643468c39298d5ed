package prompts

import (
	_ "embed"
)

//go:embed extract.txt
var ExtractPrompt string

//go:embed locate.txt
var LocatePrompt string
