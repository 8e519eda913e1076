// Package configs carries the default descriptor, category and keyword
// tables shipped with kakeibu.
package configs

import _ "embed"

//go:embed sources.yaml
var Sources []byte

//go:embed categories.yaml
var Categories []byte

//go:embed keywords.yaml
var Keywords []byte
