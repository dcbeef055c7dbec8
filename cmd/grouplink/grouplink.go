// Program grouplink runs demonstration master and worker endpoints for a
// group command channel.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/grouplink"
)

var masterFlags struct {
	Listen  string `flag:"listen,Listen address (host:port)"`
	Size    int    `flag:"size,Total group size including the master"`
	Verbose bool   `flag:"v,Log frames as they are exchanged"`
}

var workerFlags struct {
	Addr    string `flag:"addr,Master address (host:port)"`
	Rank    int    `flag:"rank,Rank of this worker"`
	Fail    string `flag:"fail,Report this error to the master after joining"`
	Verbose bool   `flag:"v,Log frames as they are exchanged"`
}

func main() {
	root := &command.C{
		Name: filepath.Base(os.Args[0]),
		Help: `Demonstration endpoints for a group command channel.

The master reads "rank text" lines from stdin and sends each text as a
command to the named rank; a worker prints each command it receives.
Flag defaults honor the MASTER_ADDR, MASTER_PORT, WORLD_SIZE, and RANK
environment variables.`,
		Commands: []*command.C{
			{
				Name: "master",
				Help: "Run the master side of a group.",
				SetFlags: func(_ *command.Env, fs *flag.FlagSet) {
					flax.MustBind(fs, &masterFlags)
				},
				Run: runMaster,
			},
			{
				Name: "worker",
				Help: "Run one worker of a group.",
				SetFlags: func(_ *command.Env, fs *flag.FlagSet) {
					flax.MustBind(fs, &workerFlags)
				},
				Run: runWorker,
			},
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

func runMaster(env *command.Env) error {
	if masterFlags.Listen == "" {
		masterFlags.Listen = ":" + envOr("MASTER_PORT", "7450")
	}
	if masterFlags.Size == 0 {
		masterFlags.Size = envInt("WORLD_SIZE")
	}
	if masterFlags.Size < 2 {
		return env.Usagef("a group needs at least 2 participants (have %d)", masterFlags.Size)
	}

	m := grouplink.NewMaster(masterFlags.Size)
	if masterFlags.Verbose {
		m.LogFrames(logFrames)
	}
	fmt.Fprintf(os.Stderr, "Waiting for %d workers on %q...\n",
		masterFlags.Size-1, masterFlags.Listen)
	if err := m.Listen(masterFlags.Listen); err != nil {
		return err
	}
	defer m.Close()
	fmt.Fprintln(os.Stderr, `Group is connected; reading "rank text" lines from stdin`)

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		first, text, _ := strings.Cut(sc.Text(), " ")
		rank, err := strconv.Atoi(first)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid rank %q: %v\n", first, err)
			continue
		}
		if err := m.Send(rank, []byte(text)); err != nil {
			return err
		}
	}
	return sc.Err()
}

func runWorker(env *command.Env) error {
	if workerFlags.Addr == "" {
		workerFlags.Addr = envOr("MASTER_ADDR", "localhost") + ":" + envOr("MASTER_PORT", "7450")
	}
	if workerFlags.Rank == 0 {
		workerFlags.Rank = envInt("RANK")
	}

	w := grouplink.NewWorker(workerFlags.Rank)
	if workerFlags.Verbose {
		w.LogFrames(logFrames)
	}
	if err := w.Join(workerFlags.Addr); err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(os.Stderr, "Joined group as rank %d\n", w.Rank())

	if workerFlags.Fail != "" {
		return w.SendError(workerFlags.Fail)
	}
	for {
		cmd, err := w.Recv()
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", cmd)
	}
}

func logFrames(fi grouplink.FrameInfo) { fmt.Fprintln(os.Stderr, fi) }

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string) int {
	v, _ := strconv.Atoi(os.Getenv(name))
	return v
}
