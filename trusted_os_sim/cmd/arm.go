// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"

	"golang.org/x/term"
)

func init() {
	Add(Cmd{
		Name: "policy",
		Help: "show ARMv8-M security policy and Non-secure entry state",
		Fn:   policyCmd,
	})
}

func policyCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer
	err = Session.Policy(&buf)
	return buf.String(), err
}
