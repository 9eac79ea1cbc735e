package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/services"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	takeLimitNotice() bool
	Status(ctx context.Context) error
	Quota(ctx context.Context) error
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Forgot(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Excel(ctx context.Context, args []string) error
	Autofill(ctx context.Context, args []string) error
	Templates(ctx context.Context, args []string) error
	Shortcuts(ctx context.Context, args []string) error
}

const helpAnonymous = `Buyruqlar:
  status                       server holati
  quota                        kunlik limit
  login | register | forgot    kirish, ro'yxatdan o'tish, parolni tiklash
  excel [so'rov]               Excel jadval yaratish
  autofill add|dir|files|rm|instruction|analyze|set|apply|process|reset
  templates [list|get <id>]    shablonlar
  shortcuts <excel|autofill> [add <matn>|rm <n>]
  exit | quit`

const helpSignedIn = `Buyruqlar:
  status | quota | whoami | logout
  excel [so'rov]               Excel jadval yaratish
  autofill add|dir|files|rm|instruction|analyze|set|apply|process|reset
  templates [list|add|rm <id>|get <id>]
  shortcuts <excel|autofill> [add <matn>|rm <n>]
  exit | quit`

// runREPL reads commands line by line from reader and dispatches them to a.
// A handler error is reported to the user and the loop goes on; it ends on
// EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("docpro %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := splitArgs(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		a.takeLimitNotice()

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
		case "status":
			cmdErr = a.Status(ctx)
		case "quota":
			cmdErr = a.Quota(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "register":
			cmdErr = a.Register(ctx)
		case "forgot":
			cmdErr = a.Forgot(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "excel":
			cmdErr = a.Excel(ctx, args)
		case "autofill", "af":
			cmdErr = a.Autofill(ctx, args)
		case "templates", "tpl":
			cmdErr = a.Templates(ctx, args)
		case "shortcuts":
			cmdErr = a.Shortcuts(ctx, args)
		case "exit", "quit":
			printlnFn("Xayr!")
			return
		default:
			printlnFn("Noma'lum buyruq:", cmd)
		}

		if cmdErr != nil {
			var u *usageError
			switch {
			case errors.As(cmdErr, &u):
				printlnFn("Foydalanish:", u.usage)
			case errors.Is(cmdErr, client.ErrLimitReached) && a.takeLimitNotice():
				// the limit interrupt has already told the user
			default:
				printlnFn(services.UserMessage(cmdErr))
			}
		}

		if err != nil {
			return
		}
	}
}

// usageError reports a malformed command line.
type usageError struct {
	usage string
}

func (e *usageError) Error() string { return "usage: " + e.usage }

func usage(s string) error { return &usageError{usage: s} }

// splitArgs splits a command line on whitespace. Double quotes group words
// and a backslash escapes the next character inside them.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)

	flush := func() {
		if started {
			args = append(args, cur.String())
		}
		cur.Reset()
		started = false
	}

	runes := []rune(strings.TrimRight(line, "\r\n"))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return args
}
