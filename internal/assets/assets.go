package assets

// Names of the built-in assets.
const (
	DefaultStyleName      = "certificate"
	DefaultTemplateName   = "patta"
	DefaultConditionsName = "fra-2006"
)

// Bundle is everything the certificate renderer needs.
type Bundle struct {
	Style      string
	Template   string
	Conditions string // markdown
}

// LoadBundle loads the named style, template, and conditions from l.
// Empty names select the defaults.
func LoadBundle(l Loader, style, template, conditions string) (*Bundle, error) {
	if style == "" {
		style = DefaultStyleName
	}
	if template == "" {
		template = DefaultTemplateName
	}
	if conditions == "" {
		conditions = DefaultConditionsName
	}

	css, err := l.LoadStyle(style)
	if err != nil {
		return nil, err
	}
	tmpl, err := l.LoadTemplate(template)
	if err != nil {
		return nil, err
	}
	cond, err := l.LoadConditions(conditions)
	if err != nil {
		return nil, err
	}
	return &Bundle{Style: css, Template: tmpl, Conditions: cond}, nil
}
