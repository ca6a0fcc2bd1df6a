package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html><head><title> Product list </title></head>
<body>
  <ul>
    <li class="item"><a href="/p/1">First</a></li>
    <li class="item"><a href="/p/2"> Second </a></li>
    <li class="item"><a>   </a></li>
  </ul>
  <form id="login" action="/login"><input name="user"></form>
</body></html>`

func TestSelect(t *testing.T) {
	got, err := Select([]byte(samplePage), "li.item a")
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, got)
}

func TestSelect_NoMatch(t *testing.T) {
	got, err := Select([]byte(samplePage), "table td")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_EmptySelector(t *testing.T) {
	_, err := Select([]byte(samplePage), "  ")
	assert.Error(t, err)
}

func TestAttr(t *testing.T) {
	got, err := Attr([]byte(samplePage), "a", "href")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/1", "/p/2"}, got)

	got, err = Attr([]byte(samplePage), "form", "action")
	require.NoError(t, err)
	assert.Equal(t, []string{"/login"}, got)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Product list", Title([]byte(samplePage)))
	assert.Equal(t, "", Title([]byte("<p>no head</p>")))
}

func TestIsChallengePage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"interstitial title", `<html><head><title>Just a moment...</title></head></html>`, true},
		{"challenge form", `<html><body><form id="challenge-form"></form></body></html>`, true},
		{"challenge script", `<script src="https://x/cdn-cgi/challenge-platform/h/b/orchestrate"></script>`, true},
		{"ordinary page", samplePage, false},
		{"plain text", "ok", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsChallengePage([]byte(tt.body)))
		})
	}
}
