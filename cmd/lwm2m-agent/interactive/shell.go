// Package interactive provides the interactive command-line interface
// for the LwM2M agent.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/lwm2m-agent/lwm2mcore/pkg/inspect"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/observe"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Shell handles interactive mode for lwm2m-agent.
//
// Every command runs with the registry lock held. Notify is called by the
// observation manager while that lock is already held and must not take it.
type Shell struct {
	reg       *model.Registry
	observer  *observe.Manager
	mu        sync.Locker
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	rl        *readline.Instance
	out       io.Writer
	now       func() time.Time
}

// New creates a new interactive shell reading from the terminal.
func New(reg *model.Registry, observer *observe.Manager, mu sync.Locker) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lwm2m> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(reg, observer, mu, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(reg *model.Registry, observer *observe.Manager, mu sync.Locker, out io.Writer) *Shell {
	return &Shell{
		reg:       reg,
		observer:  observer,
		mu:        mu,
		inspector: inspect.NewInspector(reg),
		formatter: inspect.NewFormatter(),
		out:       out,
		now:       time.Now,
	}
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("tree"),
	readline.PcItem("read"),
	readline.PcItem("write"),
	readline.PcItem("exec"),
	readline.PcItem("attr"),
	readline.PcItem("observe"),
	readline.PcItem("cancel"),
	readline.PcItem("observations"),
	readline.PcItem("poll"),
	readline.PcItem("remove"),
	readline.PcItem("teardown"),
	readline.PcItem("dump"),
	readline.PcItem("quit"),
)

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Exec(ctx, line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns false when the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if cmd == "quit" || cmd == "exit" || cmd == "q" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "tree", "t":
		s.cmdTree(args)

	case "read", "r":
		s.cmdRead(ctx, args)

	case "write", "w":
		s.cmdWrite(ctx, args)

	case "exec", "x":
		s.cmdExec(ctx, args)

	case "attr":
		s.cmdAttr(args)

	case "observe", "o":
		s.cmdObserve(ctx, args)

	case "cancel":
		s.cmdCancel(args)

	case "observations", "obs":
		s.cmdObservations()

	case "poll":
		s.cmdPoll(ctx)

	case "remove", "rm":
		s.cmdRemove(args)

	case "teardown":
		s.cmdTeardown()

	case "dump":
		s.cmdDump(args)

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

// Notify prints a notification. The caller holds the registry lock.
func (s *Shell) Notify(n observe.Notification) {
	value := fmt.Sprintf("%d bytes", len(n.Value))
	if _, r, err := s.reg.Resolve(n.URI); err == nil && r != nil {
		value = inspect.DecodeValue(r.Type(), n.Value)
	}
	fmt.Fprintf(s.out, "[NOTIFY] %s = %s (%s)\n", inspect.FormatURI(n.URI), value, n.Reason)
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
LwM2M Agent Commands:
  Registry:
    tree [uri]           - Show objects and resources (or one object)
    read <uri>           - Read a resource, or every readable resource of an object
    write <uri> <value>  - Write a resource value
    exec <uri> [args]    - Execute a resource
    attr <uri> [query]   - Show or set attributes, e.g. attr /3/0/9 pmin=10&gt=80
    remove <uri>         - Remove an object instance or resource
    teardown             - Remove every object
    dump [file]          - Dump the registry as CBOR (diagnostic form without file)

  Observation:
    observe <uri>        - Start observing a resource
    cancel <id|all>      - Stop an observation
    observations         - List active observations
    poll                 - Evaluate observations now

  General:
    help                 - Show this help
    quit                 - Exit agent

  URI Format:
    /object/instance/resource[/instance] - e.g. /3/0/9 or /device/0/batteryLevel`)
}

func (s *Shell) printError(op wire.Operation, err error) {
	fmt.Fprintf(s.out, "Error: %s (%v)\n", model.StatusFor(op, err), err)
}

func (s *Shell) parseURI(arg string) (model.URI, bool) {
	uri, err := inspect.ParseURI(arg)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid URI: %v\n", err)
		return model.URI{}, false
	}
	return uri, true
}

// cmdTree handles the tree command.
func (s *Shell) cmdTree(args []string) {
	info := s.reg.Info()
	if len(args) == 0 {
		fmt.Fprint(s.out, s.formatter.FormatTree(info))
		return
	}

	uri, ok := s.parseURI(args[0])
	if !ok {
		return
	}
	if uri.Depth == 0 {
		fmt.Fprint(s.out, s.formatter.FormatTree(info))
		return
	}
	objects := info.Objects[:0]
	for _, o := range info.Objects {
		if o.ID != uri.ObjectID || (uri.Depth >= 2 && o.InstanceID != uri.InstanceID) {
			continue
		}
		objects = append(objects, o)
	}
	info.Objects = objects
	fmt.Fprint(s.out, s.formatter.FormatTree(info))
}

// cmdRead handles the read command.
func (s *Shell) cmdRead(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: read <uri>")
		fmt.Fprintln(s.out, "  Example: read /3/0/9")
		return
	}

	uri, ok := s.parseURI(args[0])
	if !ok {
		return
	}

	if uri.Depth == 2 {
		o, err := s.reg.FindObject(uri.ObjectID, uri.InstanceID)
		if err != nil {
			s.printError(wire.OpRead, err)
			return
		}
		for r := range o.Resources() {
			if !r.CanRead() {
				continue
			}
			ruri := model.ResourceInstanceURI(o.ID(), o.InstanceID(), r.ID(), r.InstanceID())
			value, err := s.inspector.ReadValue(ctx, ruri)
			if err != nil {
				value = "error: " + err.Error()
			}
			fmt.Fprintf(s.out, "  %-40s = %s\n", inspect.FormatURI(ruri), value)
		}
		return
	}

	value, err := s.inspector.ReadValue(ctx, uri)
	if err != nil {
		s.printError(wire.OpRead, err)
		return
	}
	fmt.Fprintf(s.out, "%s = %s\n", inspect.FormatURI(uri), value)
}

// cmdWrite handles the write command.
func (s *Shell) cmdWrite(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: write <uri> <value>")
		fmt.Fprintln(s.out, "  Example: write /3/0/15 Europe/Berlin")
		return
	}

	uri, ok := s.parseURI(args[0])
	if !ok {
		return
	}
	if err := s.inspector.WriteValue(ctx, uri, strings.Join(args[1:], " ")); err != nil {
		s.printError(wire.OpWrite, err)
		return
	}
	fmt.Fprintf(s.out, "%s\n", model.StatusFor(wire.OpWrite, nil))
}

// cmdExec handles the exec command.
func (s *Shell) cmdExec(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: exec <uri> [args]")
		return
	}

	uri, ok := s.parseURI(args[0])
	if !ok {
		return
	}
	if err := s.inspector.Execute(ctx, uri, strings.Join(args[1:], " ")); err != nil {
		s.printError(wire.OpExecute, err)
		return
	}
	fmt.Fprintf(s.out, "%s\n", model.StatusFor(wire.OpExecute, nil))
}

// cmdAttr handles the attr command.
func (s *Shell) cmdAttr(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: attr <uri> [pmin=N&pmax=N&gt=X&lt=X&st=X&cancel=1]")
		return
	}

	uri, ok := s.parseURI(args[0])
	if !ok {
		return
	}

	if len(args) > 1 {
		if err := s.inspector.WriteAttributes(uri, args[1]); err != nil {
			s.printError(wire.OpWriteAttributes, err)
			return
		}
	}

	o, r, err := s.reg.Resolve(uri)
	if err != nil {
		s.printError(wire.OpDiscover, err)
		return
	}
	attrs := o.Attributes()
	if r != nil {
		attrs = r.Attributes()
	}
	if attrs.IsEmpty() {
		fmt.Fprintf(s.out, "%s: no attributes\n", inspect.FormatURI(uri))
		return
	}
	fmt.Fprintf(s.out, "%s: %s\n", inspect.FormatURI(uri), attrs.String())
}

// cmdObserve handles the observe command.
func (s *Shell) cmdObserve(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: observe <uri>")
		return
	}

	uri, ok := s.parseURI(args[0])
	if !ok {
		return
	}
	id, err := s.observer.Observe(ctx, uri)
	if err != nil {
		s.printError(wire.OpObserve, err)
		return
	}
	fmt.Fprintf(s.out, "Observing %s (id %s)\n", inspect.FormatURI(uri), id)
}

// cmdCancel handles the cancel command.
func (s *Shell) cmdCancel(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: cancel <id|all>")
		return
	}

	if args[0] == "all" {
		n := s.observer.Count()
		s.observer.ClearAll()
		fmt.Fprintf(s.out, "Cancelled %d observation(s)\n", n)
		return
	}

	if err := s.observer.Cancel(args[0]); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Cancelled %s\n", args[0])
}

// cmdObservations handles the observations command.
func (s *Shell) cmdObservations() {
	list := s.observer.List()
	if len(list) == 0 {
		fmt.Fprintln(s.out, "No active observations")
		return
	}
	now := s.now()
	for _, o := range list {
		fmt.Fprintf(s.out, "  %s %-32s notifications=%d last=%s ago\n",
			o.ID, inspect.FormatURI(o.URI), o.Notifications, now.Sub(o.LastNotified).Round(time.Second))
	}
}

// cmdPoll handles the poll command.
func (s *Shell) cmdPoll(ctx context.Context) {
	n, err := s.observer.Poll(ctx, s.now())
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	fmt.Fprintf(s.out, "Sent %d notification(s)\n", n)
}

// cmdRemove handles the remove command.
func (s *Shell) cmdRemove(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: remove <uri>")
		return
	}

	uri, ok := s.parseURI(args[0])
	if !ok {
		return
	}

	var err error
	switch {
	case uri.Depth == 2:
		err = s.reg.RemoveObject(uri.ObjectID, uri.InstanceID)
	case uri.Depth >= 3:
		err = s.reg.RemoveResource(uri)
	default:
		err = fmt.Errorf("%w: %s", model.ErrInvalidURI, uri)
	}
	if err != nil {
		s.printError(wire.OpDelete, err)
		return
	}
	fmt.Fprintf(s.out, "%s\n", model.StatusFor(wire.OpDelete, nil))
}

// cmdTeardown handles the teardown command.
func (s *Shell) cmdTeardown() {
	n := s.reg.ObjectCount()
	s.observer.ClearAll()
	s.reg.Teardown()
	fmt.Fprintf(s.out, "Removed %d object(s)\n", n)
}

// cmdDump handles the dump command.
func (s *Shell) cmdDump(args []string) {
	if len(args) == 0 {
		diag, err := s.inspector.DumpDiagnostic()
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(s.out, diag)
		return
	}

	f, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	err = errors.Join(s.inspector.Dump(f), f.Close())
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Wrote %s\n", args[0])
}
