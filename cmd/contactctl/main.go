// contactctl is a command-line front end for the contact API. It drives
// the same Store and Editor a graphical client would: field validation
// runs locally before any request, and the list is refetched after every
// change.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"contact-manager-backend/pkg/contactclient"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	apiURL  string
	timeout time.Duration
	yes     bool
	fields  contactclient.Contact
	format  string
	columns []string
	output  string
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("contactctl", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.StringVar(&opts.apiURL, "api", envOr("CONTACT_API_URL", "http://localhost:8080/api"), "base URL of the contact API")
	flagSet.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	flagSet.BoolVarP(&opts.yes, "yes", "y", false, "do not ask before deleting")
	flagSet.StringVar(&opts.fields.Name, "name", "", "contact name (required)")
	flagSet.StringVar(&opts.fields.Address, "address", "", "postal address")
	flagSet.StringVar(&opts.fields.Telephone, "tel", "", "landline number")
	flagSet.StringVar(&opts.fields.Mobile, "mobile", "", "mobile number (required)")
	flagSet.StringVar(&opts.fields.Email, "email", "", "email address")
	flagSet.StringVar(&opts.fields.Country, "country", "", "country (required)")
	flagSet.StringVar(&opts.format, "format", "xlsx", "export format (xlsx, csv)")
	flagSet.StringSliceVar(&opts.columns, "columns", nil, "export columns (wire names, comma separated)")
	flagSet.StringVarP(&opts.output, "output", "o", "", "export file path (default: server filename)")
	flagSet.Usage = func() { printHelp(stdout, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stdout, flagSet)
		return errors.New("missing command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client := contactclient.New(opts.apiURL, contactclient.NewHTTPClient(opts.timeout))
	store := contactclient.NewStore(client)
	editor := contactclient.NewEditor(store, contactclient.DefaultBannerDelay)

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "list":
		if err := store.Refresh(ctx); err != nil {
			return err
		}
		printTable(stdout, store.Contacts())
		return nil

	case "get":
		id, err := parseID(cmdArgs)
		if err != nil {
			return err
		}
		contact, err := client.Get(ctx, id)
		if err != nil {
			return err
		}
		printTable(stdout, []contactclient.Contact{contact})
		return nil

	case "add":
		editor.New()
		editor.Draft = opts.fields
		created, err := editor.Save(ctx)
		if err != nil {
			return bannerError(editor, err)
		}
		fmt.Fprintf(stdout, "%s (id %d)\n", editor.Banner.Success(), created.ID)
		return nil

	case "update":
		id, err := parseID(cmdArgs)
		if err != nil {
			return err
		}
		current, err := client.Get(ctx, id)
		if err != nil {
			return err
		}
		editor.Select(current)
		mergeChanged(flagSet, &editor.Draft, opts.fields)
		if _, err := editor.Update(ctx); err != nil {
			return bannerError(editor, err)
		}
		fmt.Fprintln(stdout, editor.Banner.Success())
		return nil

	case "delete":
		id, err := parseID(cmdArgs)
		if err != nil {
			return err
		}
		editor.Select(contactclient.Contact{ID: id})
		if !opts.yes {
			editor.Confirm = func(c contactclient.Contact) bool {
				return confirm(stdin, stdout, fmt.Sprintf("Are you sure you want to delete contact %d?", c.ID))
			}
		}
		if err := editor.Delete(ctx); err != nil {
			if errors.Is(err, contactclient.ErrCancelled) {
				fmt.Fprintln(stdout, "Cancelled")
				return nil
			}
			return bannerError(editor, err)
		}
		fmt.Fprintln(stdout, editor.Banner.Success())
		return nil

	case "export":
		data, filename, err := client.Export(ctx, opts.format, opts.columns)
		if err != nil {
			return err
		}
		if opts.output == "-" {
			_, err = stdout.Write(data)
			return err
		}
		if opts.output != "" {
			filename = opts.output
		}
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d bytes to %s\n", len(data), filename)
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one contact ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contact ID %q", args[0])
	}
	return id, nil
}

// mergeChanged copies only the fields given on the command line.
func mergeChanged(flagSet *pflag.FlagSet, dst *contactclient.Contact, src contactclient.Contact) {
	if flagSet.Changed("name") {
		dst.Name = src.Name
	}
	if flagSet.Changed("address") {
		dst.Address = src.Address
	}
	if flagSet.Changed("tel") {
		dst.Telephone = src.Telephone
	}
	if flagSet.Changed("mobile") {
		dst.Mobile = src.Mobile
	}
	if flagSet.Changed("email") {
		dst.Email = src.Email
	}
	if flagSet.Changed("country") {
		dst.Country = src.Country
	}
}

func bannerError(editor *contactclient.Editor, err error) error {
	var fe contactclient.FieldErrors
	if errors.As(err, &fe) {
		return fmt.Errorf("%s: %s", editor.Banner.Error(), fe.Error())
	}
	if msg := editor.Banner.Error(); msg != "" {
		return errors.New(msg)
	}
	return err
}

func confirm(stdin io.Reader, stdout io.Writer, prompt string) bool {
	fmt.Fprintf(stdout, "%s [y/N] ", prompt)
	var answer string
	if _, err := fmt.Fscanln(stdin, &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printTable(w io.Writer, contacts []contactclient.Contact) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMOBILE\tTEL\tEMAIL\tCOUNTRY\tADDRESS")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Mobile, c.Telephone, c.Email, c.Country, c.Address)
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `contactctl manages contacts through the contact API.

Usage:
  contactctl [flags] list
  contactctl [flags] get ID
  contactctl [flags] add --name NAME --mobile MOBILE --country COUNTRY
  contactctl [flags] update ID [--name ...] [--mobile ...]
  contactctl [flags] delete ID [--yes]
  contactctl [flags] export [--format csv] [--columns name,mobile] [-o FILE]

Flags:
%s`, flagSet.FlagUsages())
}
