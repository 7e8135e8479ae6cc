// Package confloader loads tool configuration through koanf.
//
// Sources merge in priority order: flags (via LoadMap) over environment
// variables over a YAML file over struct defaults. The bench command is
// the only consumer; it loads once at startup and never watches for
// changes.
package confloader
