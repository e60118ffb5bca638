//go:build wasip1

// Mock guest for testing executor logic without the Python interpreter.
// Build with: GOOS=wasip1 GOARCH=wasm go build -o mock.wasm mock.go
//
// The program is its last argument, one command per line:
//
//	print <text>     write text to stdout
//	ask <prompt>     call input_request and print the answer
//	read <module>    call module_read and print the source
//	fail <message>   write message to stderr and exit 1
//	spin             loop forever
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

var stdin = bufio.NewReader(os.Stdin)

func call(fn string, args map[string]any) (any, string) {
	payload, _ := json.Marshal(map[string]any{"fn": fn, "args": args})
	fmt.Fprintf(os.Stderr, "\x00PYPLAY:%s\x00", payload)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return nil, err.Error()
	}
	var resp struct {
		Data  any    `json:"data"`
		Error string `json:"error"`
	}
	json.Unmarshal([]byte(line), &resp)
	return resp.Data, resp.Error
}

func main() {
	program := os.Args[len(os.Args)-1]
	for _, line := range strings.Split(program, "\n") {
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "print":
			fmt.Println(arg)
		case "ask":
			data, errMsg := call("input_request", map[string]any{"prompt": arg})
			if errMsg != "" {
				fmt.Fprintln(os.Stderr, errMsg)
				os.Exit(1)
			}
			fmt.Println(data)
		case "read":
			data, errMsg := call("module_read", map[string]any{"name": arg})
			if errMsg != "" {
				fmt.Fprintf(os.Stderr, "ModuleNotFoundError: %s\n", errMsg)
				os.Exit(1)
			}
			fmt.Println(data)
		case "fail":
			fmt.Fprintln(os.Stderr, arg)
			os.Exit(1)
		case "spin":
			for {
			}
		}
	}
}
