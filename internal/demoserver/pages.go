package demoserver

import "html/template"

// challengeTitle matches the interstitial title the chromedp backend waits out.
const challengeTitle = "Just a moment..."

var challengeTemplate = template.Must(template.New("challenge").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>` + challengeTitle + `</title>
    <meta name="robots" content="noindex,nofollow">
</head>
<body>
    <div id="challenge-running">Checking your browser before accessing {{.Host}}.</div>
    <form id="challenge-form" action="{{.Path}}" method="GET"></form>
    <script>
        setTimeout(function () {
            document.cookie = "{{.CookieName}}={{.Token}}; path=/";
            location.reload();
        }, {{.DelayMillis}});
    </script>
</body>
</html>`))

type challengeData struct {
	Host        string
	Path        string
	CookieName  string
	Token       string
	DelayMillis int64
}

const protectedPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Demo Shop</title>
</head>
<body>
    <h1>Welcome to Demo Shop</h1>
    <ul class="products">
        <li class="product"><a href="/p/1">Blue Widget</a></li>
        <li class="product"><a href="/p/2">Red Widget</a></li>
        <li class="product"><a href="/p/3">Green Widget</a></li>
    </ul>
</body>
</html>`
