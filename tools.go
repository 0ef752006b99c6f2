//go:build tools
// +build tools

// Package tools pins the code generators used by go:generate (mockgen) as
// module dependencies.
package roomchat

import (
	_ "go.uber.org/mock/mockgen"
)
