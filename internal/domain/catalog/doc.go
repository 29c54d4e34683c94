// Package catalog loads the launcher icons shown on the desktop.
//
// A catalog is a YAML, TOML or JSON document with a top-level "icons" list:
//
//	icons:
//	  - id: icon-home
//	    title: Home
//	    icon: /assets/icons/home.svg
//	    width: 48
//	    height: 48
//
// A directory is loaded by globbing every catalog file beneath it. Titles
// are stripped of markup, entries without an id are dropped and the first
// entry wins when ids repeat.
package catalog
