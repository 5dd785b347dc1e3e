// Command snd sends a single command to a recmd server and prints the
// captured output it gets back.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"recmd/internal/client"
	"recmd/internal/config"
)

// sendFunc abstracts the single network call run makes, so its argument
// validation and dispatch can be tested without a live server.
type sendFunc func(addr string, cmd []byte) ([]byte, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, liveSend))
}

// run parses args and either sends the command or fails fast, never
// calling send unless both -i and -c were supplied.
func run(args []string, stdout, stderr io.Writer, send sendFunc) int {
	fs := flag.NewFlagSet("snd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		srvIP = fs.String("i", "", "server IP address (required)")
		port  = fs.Uint("p", config.DefaultPort, "server port")
		cmd   = fs.String("c", "", "command to run on the server (required)")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "snd - send a command to a recmd server\n\n")
		fmt.Fprintf(stderr, "Usage:\n  snd -i <server-ip> -c <command> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *srvIP == "" || *cmd == "" {
		fs.Usage()
		return 2
	}

	addr := fmt.Sprintf("%s:%d", *srvIP, *port)
	out, err := send(addr, []byte(*cmd))
	if err != nil {
		fmt.Fprintf(stderr, "snd: %v\n", err)
		return 1
	}

	stdout.Write(out)
	return 0
}

func liveSend(addr string, cmd []byte) ([]byte, error) {
	cfg := config.NewClient()
	sender, err := client.NewSender(cfg)
	if err != nil {
		return nil, err
	}
	return sender.Send(addr, cmd)
}
