// Package assets provides the certificate stylesheet, HTML layout, and
// conditions-of-grant text.
//
// Assets come from the embedded defaults or from a directory on disk laid
// out the same way:
//
//	{basePath}/
//	├── styles/{name}.css
//	├── templates/{name}.html
//	└── conditions/{name}.md
//
// Resolver tries the directory first and falls back to the embedded copy
// when an asset is missing there. Names are validated and resolved paths
// must stay inside basePath.
package assets
