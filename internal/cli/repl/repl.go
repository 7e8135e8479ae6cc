package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RaphaelDarley/quadrille/pkg/occ"
)

// ErrNoTransaction is returned by commands that need an open transaction.
var ErrNoTransaction = errors.New("repl: no open transaction, run begin first")

// ErrTransactionOpen is returned by begin when a transaction is already
// open.
var ErrTransactionOpen = errors.New("repl: transaction already open, commit or discard it first")

// REPL is one interactive session over a handle. Input and Output default
// to the process's stdin and stdout; tests swap them.
type REPL[S occ.Store[S]] struct {
	Input  io.Reader
	Output io.Writer

	handle    *occ.Handle[S]
	txn       *occ.Txn[S]
	completer *Completer
	history   *History
}

// New returns a REPL over h.
func New[S occ.Store[S]](h *occ.Handle[S]) *REPL[S] {
	return &REPL[S]{
		Input:     os.Stdin,
		Output:    os.Stdout,
		handle:    h,
		completer: NewCompleter(),
		history:   NewHistory(),
	}
}

// Run reads and executes commands until exit or EOF. An open transaction
// is discarded on the way out.
func (r *REPL[S]) Run() error {
	r.history.Load() // a missing history file is fine
	defer r.history.Save()
	defer r.discardOpen()

	reader := bufio.NewReader(r.Input)
	for {
		fmt.Fprint(r.Output, r.prompt())

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Fprintln(r.Output)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}
		if err := r.execute(line); err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
		}
	}
}

func (r *REPL[S]) prompt() string {
	if r.txn != nil {
		return "quadrille(txn)> "
	}
	return "quadrille> "
}

func (r *REPL[S]) discardOpen() {
	if r.txn != nil {
		r.txn.Discard()
		r.txn = nil
	}
}

func (r *REPL[S]) execute(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		return r.cmdHelp()
	case "begin":
		return r.cmdBegin()
	case "get":
		return r.cmdGet(args)
	case "insert":
		return r.cmdInsert(args)
	case "commit":
		return r.cmdCommit()
	case "discard":
		return r.cmdDiscard()
	case "snapshot":
		return r.cmdSnapshot(args)
	case "version":
		fmt.Fprintf(r.Output, "version %d\n", r.handle.Version())
		return nil
	case "stats":
		return r.cmdStats()
	default:
		if matches := r.completer.Complete(cmd); len(matches) > 0 {
			return fmt.Errorf("repl: unknown command %q, did you mean %s?", cmd, strings.Join(matches, " or "))
		}
		return fmt.Errorf("repl: unknown command %q, try help", cmd)
	}
}

func (r *REPL[S]) cmdHelp() error {
	fmt.Fprint(r.Output, `commands:
  begin              open a transaction pinned to the current version
  get KEY            read from the open transaction, or the published snapshot
  insert KEY VALUE   buffer a write in the open transaction
  commit             publish the open transaction's writes
  discard            drop the open transaction
  snapshot get KEY   read the published snapshot, ignoring the transaction
  version            show the current published version
  stats              show commit-path counters
  help               show this help
  exit               leave (also: quit, Ctrl-D)
`)
	return nil
}

func (r *REPL[S]) cmdBegin() error {
	if r.txn != nil {
		return ErrTransactionOpen
	}
	r.txn = r.handle.Begin()
	fmt.Fprintf(r.Output, "transaction open at version %d\n", r.txn.Basis().Seq())
	return nil
}

func (r *REPL[S]) cmdGet(args []string) error {
	if len(args) != 1 {
		return errors.New("repl: usage: get KEY")
	}
	var value []byte
	var ok bool
	if r.txn != nil {
		value, ok = r.txn.Get([]byte(args[0]))
	} else {
		value, ok = r.handle.Snapshot().Get([]byte(args[0]))
	}
	if !ok {
		fmt.Fprintln(r.Output, "(not found)")
		return nil
	}
	fmt.Fprintf(r.Output, "%s\n", value)
	return nil
}

func (r *REPL[S]) cmdInsert(args []string) error {
	if len(args) != 2 {
		return errors.New("repl: usage: insert KEY VALUE")
	}
	if r.txn == nil {
		return ErrNoTransaction
	}
	existed := r.txn.Insert([]byte(args[0]), []byte(args[1]))
	if existed {
		fmt.Fprintln(r.Output, "replaced")
	} else {
		fmt.Fprintln(r.Output, "inserted")
	}
	return nil
}

func (r *REPL[S]) cmdCommit() error {
	if r.txn == nil {
		return ErrNoTransaction
	}
	txn := r.txn
	r.txn = nil
	if _, err := txn.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(r.Output, "committed at version %d\n", r.handle.Version())
	return nil
}

func (r *REPL[S]) cmdDiscard() error {
	if r.txn == nil {
		return ErrNoTransaction
	}
	r.discardOpen()
	fmt.Fprintln(r.Output, "discarded")
	return nil
}

func (r *REPL[S]) cmdSnapshot(args []string) error {
	if len(args) != 2 || args[0] != "get" {
		return errors.New("repl: usage: snapshot get KEY")
	}
	value, ok := r.handle.Snapshot().Get([]byte(args[1]))
	if !ok {
		fmt.Fprintln(r.Output, "(not found)")
		return nil
	}
	fmt.Fprintf(r.Output, "%s\n", value)
	return nil
}

func (r *REPL[S]) cmdStats() error {
	s := r.handle.Stats().Snapshot()
	fmt.Fprintf(r.Output, "begins    %d\n", s.Begins)
	fmt.Fprintf(r.Output, "commits   %d\n", s.Commits)
	fmt.Fprintf(r.Output, "races     %d\n", s.Races)
	fmt.Fprintf(r.Output, "resolves  %d\n", s.Resolves)
	fmt.Fprintf(r.Output, "conflicts %d\n", s.Conflicts)
	fmt.Fprintf(r.Output, "exhausted %d\n", s.Exhausted)
	fmt.Fprintf(r.Output, "discards  %d\n", s.Discards)
	return nil
}
