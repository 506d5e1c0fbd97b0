/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// chixreplay is an interactive, record-by-record debugging shell over a
// capture file: step one wire record at a time, inspect the lines it
// produced, and watch the translator's diagnostic state evolve. Modeled
// directly on the teacher's FIX REPL, with the market-data/order-entry
// command set replaced by the much smaller "step through a capture"
// command set this domain calls for.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/HannahAHarris/chix-converter/translator"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: chixreplay <capture.txt>")
		os.Exit(1)
	}

	lines, err := loadLines(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}

	sess := &session{
		lines: lines,
		tr:    translator.New(),
	}
	repl(sess)
}

func loadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// session holds one replay's position in the capture and the translator
// processing it; a fresh Translator is never reused across a "reset".
type session struct {
	lines []string
	pos   int
	tr    *translator.Translator
}

func repl(sess *session) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("step"),
		readline.PcItem("run"),
		readline.PcItem("seen"),
		readline.PcItem("pos"),
		readline.PcItem("reset"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "chixreplay> ",
		HistoryFile:     "/tmp/chixreplay_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create readline: %s\n", err.Error())
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "step":
			n := 1
			if len(parts) > 1 {
				if v, err := strconv.Atoi(parts[1]); err == nil {
					n = v
				}
			}
			sess.step(n)
		case "run":
			sess.step(len(sess.lines))
		case "seen":
			sess.showSeen()
		case "pos":
			fmt.Printf("%d / %d\n", sess.pos, len(sess.lines))
		case "reset":
			sess.tr = translator.New()
			sess.pos = 0
			fmt.Println("translator reset")
		case "help":
			printHelp()
		case "exit", "quit":
			return
		default:
			fmt.Println("unknown command. Type 'help' for available commands.")
		}
	}
}

func (s *session) step(n int) {
	for i := 0; i < n && s.pos < len(s.lines); i++ {
		line := s.lines[s.pos]
		s.pos++

		out, err := s.tr.Process(line)
		if err != nil {
			fmt.Printf("[%d] ERROR: %s\n    %s\n", s.pos, err.Error(), line)
			continue
		}
		if out.Empty() {
			fmt.Printf("[%d] (no output)\n", s.pos)
			continue
		}
		for _, l := range out.Lines {
			fmt.Printf("[%d] %s\n", s.pos, l)
		}
	}
	if s.pos >= len(s.lines) {
		fmt.Println("-- end of capture --")
	}
}

func (s *session) showSeen() {
	fmt.Println("securities:", strings.Join(s.tr.SeenSecurities(), ", "))
	fmt.Println("undisclosed:", strings.Join(s.tr.SeenUndisclosed(), ", "))
}

func printHelp() {
	fmt.Print(`Commands:
  step [n]   Process the next n records (default 1) and print their output
  run        Process every remaining record in the capture
  seen       List securities and undisclosed order-ids seen so far
  pos        Show current position in the capture
  reset      Start a fresh translator session from record 1
  help       Show this message
  exit       Quit
`)
}
