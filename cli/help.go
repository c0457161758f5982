// Copyright (c) 2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package cli

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"

	"github.com/openthread/ot-machooks/logger"
	"github.com/openthread/ot-machooks/machooks"
	. "github.com/openthread/ot-machooks/types"
)

const (
	defaultTermWidth = 80
	helpNameWidth    = 14
)

// The command reference, one "### <command>" section per command.
//
//go:embed README.md
var cliHelpFile string

var markdownReplacer = strings.NewReplacer("`", "", "\\", "")

type commandHelp struct {
	summary string
	text    []string
	usage   []string
	example []string
}

// Help renders the command reference for the commands of the Command grammar.
type Help struct {
	termWidth uint
	names     []string
	commands  map[string]*commandHelp
}

func newHelp() Help {
	h := Help{
		termWidth: defaultTermWidth,
		names:     grammarCommands(),
		commands:  parseCommandReference(cliHelpFile),
	}
	for _, name := range h.names {
		if _, ok := h.commands[name]; !ok {
			logger.Debugf("command %s has no help section", name)
		}
	}
	return h
}

// grammarCommands returns the keyword of every alternative of the Command grammar, in grammar order.
func grammarCommands() []string {
	var names []string
	ct := reflect.TypeOf(Command{})
	for i := 0; i < ct.NumField(); i++ {
		if kw, ok := ct.Field(i).Type.Elem().FieldByName("Cmd"); ok {
			names = append(names, strings.Trim(string(kw.Tag), `"`))
		}
	}
	return names
}

func parseCommandReference(md string) map[string]*commandHelp {
	commands := make(map[string]*commandHelp)
	var cur *commandHelp
	var block *[]string

	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "### "):
			cur = &commandHelp{}
			commands[strings.TrimSpace(line[4:])] = cur
			block = nil
		case cur == nil || line == "":
		case line == "```shell":
			block = &cur.usage
		case line == "```bash":
			block = &cur.example
		case line == "```":
			block = nil
		case block != nil:
			*block = append(*block, line)
		default:
			line = markdownReplacer.Replace(line)
			cur.text = append(cur.text, line)
			if cur.summary == "" {
				cur.summary = firstSentence(line)
			}
		}
	}
	return commands
}

func firstSentence(s string) string {
	if idx := strings.Index(s, ". "); idx > 0 {
		return s[:idx+1]
	}
	return s
}

// width returns the terminal width, or the default width when stdout is not a terminal.
func (help *Help) width() uint {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return help.termWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= helpNameWidth {
		logger.Debugf("could not get terminal size: %v", err)
		return help.termWidth
	}
	return uint(w)
}

func (help *Help) summary(name string) string {
	if ch, ok := help.commands[name]; ok {
		return ch.summary
	}
	return "(no help available)"
}

func (help *Help) isCommand(name string) bool {
	for _, n := range help.names {
		if n == name {
			return true
		}
	}
	return false
}

// outputGeneralHelp lists the commands grouped by the policy of the event they raise.
func (help *Help) outputGeneralHelp() string {
	var veto, notify, bench strings.Builder
	for _, name := range help.names {
		line := fmt.Sprintf("  %-*s %s\n", helpNameWidth, name, help.summary(name))
		kind, err := ParseEventKind(name)
		switch {
		case err != nil:
			bench.WriteString(line)
		case kind.Policy() == PolicyVeto:
			veto.WriteString(line)
		default:
			notify.WriteString(line)
		}
	}

	return "Veto events (print approved or rejected):\n" + veto.String() +
		"Notification events:\n" + notify.String() +
		"Bench:\n" + bench.String() +
		wordwrap.WrapString("\nFrames are hex strings in double quotes; a missing PHR byte is added. "+
			"For detailed help per command, use: 'help <command>'\n", help.width())
}

func (help *Help) outputCommandHelp(name string) string {
	ch, ok := help.commands[name]
	if !ok || !help.isCommand(name) {
		return fmt.Sprintf("%s: unknown command, see 'help'\n", name)
	}

	width := help.width()
	var sb strings.Builder
	sb.WriteString(name + "\n")
	for _, para := range ch.text {
		writeIndented(&sb, wordwrap.WrapString(para, width-2), "  ")
	}
	if kind, err := ParseEventKind(name); err == nil {
		writeIndented(&sb, fmt.Sprintf("Policy: %s, hooks when enabled: %s", kind.Policy(),
			strings.Join(contributors(kind), ", ")), "  ")
	}
	if len(ch.usage) > 0 {
		sb.WriteString("\nUsage:\n")
		writeIndented(&sb, strings.Join(ch.usage, "\n"), "    ")
	}
	if len(ch.example) > 0 {
		sb.WriteString("\nExample:\n")
		writeIndented(&sb, strings.Join(ch.example, "\n"), "    ")
	}
	return sb.String()
}

// contributors returns the features that have a hook for kind, in evaluation order.
func contributors(kind EventKind) []string {
	var names []string
	for _, f := range AllFeatures {
		if machooks.Contributes(f, kind) {
			names = append(names, f.String())
		}
	}
	return names
}

func writeIndented(sb *strings.Builder, text string, indent string) {
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString(indent + line + "\n")
	}
}
