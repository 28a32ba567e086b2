package reporting

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; line-height: 1.6; }
table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
th, td { border: 1px solid #ddd; padding: 8px 12px; text-align: left; }
th { background-color: #f2f2f2; }
</style>
</head>
<body>
%s</body>
</html>
`

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// ToHTML converts a Markdown report into a standalone HTML page.
func ToHTML(markdown, title string) (string, error) {
	var body bytes.Buffer
	if err := htmlRenderer.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return fmt.Sprintf(pageTemplate, html.EscapeString(title), body.String()), nil
}
