package style

import "sync"

// defaultSheet is used when no style sheet is configured.
const defaultSheet = `
[root]
font-size = 16
color = "#24292f"

["h1, h2, h3, h4, h5, h6"]
font-weight = "bold"

[h1]
font-size = 32
[h2]
font-size = 26
[h3]
font-size = 22
[h4]
font-size = 20
[h5]
font-size = 18
[h6]
font-size = 16

["h1:hidden, h2:hidden, h3:hidden, h4:hidden, h5:hidden, h6:hidden"]
color = "#8c959f"

["strong:hidden, emphasis:hidden, codespan:hidden, link:hidden, image:hidden, inline_math:hidden"]
color = "#8c959f"

[strong]
font-weight = "bold"

[emphasis]
font-style = "italic"

[codespan]
font-family = "mono"
background-color = "#eff1f3"
border-radius = 3

[link]
color = "#0969da"

[image]
color = "#0969da"

["block_code, block_html"]
font-family = "mono"
indent = 15
padding = 25
background-color = "rgba(16, 16, 16, 16)"
border-radius = 6

[block_math]
indent = 15
padding = 25
background-color = "rgba(16, 16, 16, 16)"
border-radius = 6

[block_quote]
color = "#57606a"
indent = 16
border-width = 3

[thematic_break]
color = "#d0d7de"
border-width = 2

["table_row:nth-child(2n+1)"]
background-color = "#f6f8fa"

[table_cell]
padding = "2px 8px"
`

var (
	defaultOnce sync.Once
	defaultS    *Sheet
)

// Default returns the built-in style sheet.
func Default() *Sheet {
	defaultOnce.Do(func() {
		s, err := Parse([]byte(defaultSheet))
		if err != nil {
			panic("style: bad built-in sheet: " + err.Error())
		}
		defaultS = s
	})
	return defaultS
}
