package rod

const (
	InteractiveHTML = `<!DOCTYPE html>
<html>
<head><title>Login Form</title></head>
<body style="margin:0">
	<button id="btn" style="position:absolute;left:100px;top:100px;width:120px;height:40px">Sign in</button>
	<input id="name" type="text" style="position:absolute;left:100px;top:200px;width:200px;height:30px" />
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	SecondHTML = `<!DOCTYPE html>
<html>
<head><title>Settings Panel</title></head>
<body><h1>Settings</h1></body>
</html>`

	ScrollableHTML = `<!DOCTYPE html>
<html>
<head><title>Long Page</title></head>
<body style="height: 5000px;">
	<h1 id="top">Top of Page</h1>
</body>
</html>`
)
