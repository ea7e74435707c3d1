package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/target/content-portal/internal/bootstrap"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/service"
)

type listUsersOptions struct {
	Query string
	JSON  bool
}

func parseListUsersFlags(args []string) (listUsersOptions, error) {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listUsersOptions
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the JSON user listing")
	fs.BoolVar(&opts.JSON, "json", false, "Print the listing as JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return listUsersOptions{}, err
	}
	opts.Query = strings.TrimSpace(opts.Query)
	if opts.Query != "" {
		if _, err := jmespath.Compile(opts.Query); err != nil {
			return listUsersOptions{}, fmt.Errorf("invalid --query: %w", err)
		}
	}
	return opts, nil
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	opts, err := parseListUsersFlags(args)
	if err != nil {
		return err
	}
	return cmdCtx.withServices(func(ctx context.Context, svc bootstrap.ServiceContainer) error {
		users, listErr := svc.Admin.ListManageableUsers(ctx)
		if listErr != nil {
			return fmt.Errorf("list users: %w", listErr)
		}
		if opts.Query == "" && !opts.JSON {
			return printUserTable(cmdCtx, users)
		}
		out, queryErr := queryUsers(users, opts.Query)
		if queryErr != nil {
			return queryErr
		}
		return printJSON(cmdCtx, out)
	})
}

// queryUsers converts users to their generic JSON form and applies expr to it.
func queryUsers(users []domainauth.Account, expr string) (any, error) {
	raw, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	var doc any
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if expr == "" {
		return doc, nil
	}
	out, err := jmespath.Search(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("apply query: %w", err)
	}
	return out, nil
}

func printUserTable(cmdCtx *commandContext, users []domainauth.Account) error {
	if len(users) == 0 {
		return writeln(cmdCtx.Out, "no user accounts")
	}
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writef(tw, "IDENTITY\tNAME\tAPPROVED\tPAGES\tREGISTERED\n"); err != nil {
		return err
	}
	for _, u := range users {
		if err := writef(tw, "%s\t%s\t%t\t%s\t%s\n",
			u.Identity, u.DisplayName, u.Approved, joinPages(u.AllowedPages),
			u.RegisteredAt.UTC().Format("2006-01-02 15:04")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printJSON(cmdCtx *commandContext, v any) error {
	enc := json.NewEncoder(cmdCtx.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

type approveOptions struct {
	Identity string
	Revoke   bool
}

func parseApproveFlags(args []string) (approveOptions, error) {
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts approveOptions
	fs.StringVar(&opts.Identity, "identity", "", "Email of the account to edit")
	fs.BoolVar(&opts.Revoke, "revoke", false, "Revoke approval instead of granting it")
	if err := fs.Parse(args); err != nil {
		return approveOptions{}, err
	}
	if opts.Identity = strings.TrimSpace(opts.Identity); opts.Identity == "" {
		return approveOptions{}, errors.New("--identity is required")
	}
	return opts, nil
}

func runApprove(cmdCtx *commandContext, args []string) error {
	opts, err := parseApproveFlags(args)
	if err != nil {
		return err
	}
	return cmdCtx.withServices(func(ctx context.Context, svc bootstrap.ServiceContainer) error {
		res, editErr := svc.Admin.SetApproval(ctx, opts.Identity, !opts.Revoke)
		if editErr != nil {
			return fmt.Errorf("set approval: %w", editErr)
		}
		return reportEdit(cmdCtx, res, fmt.Sprintf("approved=%t", res.Account.Approved))
	})
}

type grantPagesOptions struct {
	Identity string
	Pages    []domainauth.PageID
}

func parseGrantPagesFlags(args []string) (grantPagesOptions, error) {
	fs := flag.NewFlagSet("grant-pages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		opts  grantPagesOptions
		pages string
	)
	fs.StringVar(&opts.Identity, "identity", "", "Email of the account to edit")
	fs.StringVar(&pages, "pages", "", "Comma-separated page ids; empty revokes every page")
	if err := fs.Parse(args); err != nil {
		return grantPagesOptions{}, err
	}
	if opts.Identity = strings.TrimSpace(opts.Identity); opts.Identity == "" {
		return grantPagesOptions{}, errors.New("--identity is required")
	}
	opts.Pages = splitPages(pages)
	return opts, nil
}

func splitPages(raw string) []domainauth.PageID {
	out := []domainauth.PageID{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, domainauth.PageID(p))
		}
	}
	return out
}

func joinPages(pages []domainauth.PageID) string {
	if len(pages) == 0 {
		return "-"
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

func runGrantPages(cmdCtx *commandContext, args []string) error {
	opts, err := parseGrantPagesFlags(args)
	if err != nil {
		return err
	}
	return cmdCtx.withServices(func(ctx context.Context, svc bootstrap.ServiceContainer) error {
		res, editErr := svc.Admin.SetAllowedPages(ctx, opts.Identity, opts.Pages)
		if editErr != nil {
			return fmt.Errorf("set allowed pages: %w", editErr)
		}
		return reportEdit(cmdCtx, res, "pages="+joinPages(res.Account.AllowedPages))
	})
}

func reportEdit(cmdCtx *commandContext, res service.EditResult, summary string) error {
	if res.Skipped {
		return writef(cmdCtx.Out, "%s is an admin; nothing changed\n", res.Account.Identity)
	}
	return writef(cmdCtx.Out, "%s updated: %s\n", res.Account.Identity, summary)
}

func runSeedAdmin(cmdCtx *commandContext, _ []string) error {
	seed := cmdCtx.Config.Auth.SeedAdmin
	if !seed.Enabled() {
		return errors.New("SEED_ADMIN_IDENTITY and SEED_ADMIN_SECRET must be set")
	}
	return cmdCtx.withServices(func(ctx context.Context, svc bootstrap.ServiceContainer) error {
		acc, created, err := svc.Auth.SeedAdmin(ctx, service.SeedInput{
			Identity:    seed.Identity,
			Secret:      seed.Secret,
			DisplayName: seed.DisplayName,
		})
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if !created {
			return writef(cmdCtx.Out, "admin %s already exists\n", acc.Identity)
		}
		return writef(cmdCtx.Out, "created admin %s\n", acc.Identity)
	})
}

type analyticsOptions struct {
	Reset bool
	JSON  bool
}

func parseAnalyticsFlags(args []string) (analyticsOptions, error) {
	fs := flag.NewFlagSet("analytics", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts analyticsOptions
	fs.BoolVar(&opts.Reset, "reset", false, "Zero every counter after printing")
	fs.BoolVar(&opts.JSON, "json", false, "Print the snapshot as JSON")
	if err := fs.Parse(args); err != nil {
		return analyticsOptions{}, err
	}
	return opts, nil
}

func runAnalytics(cmdCtx *commandContext, args []string) error {
	opts, err := parseAnalyticsFlags(args)
	if err != nil {
		return err
	}
	return cmdCtx.withServices(func(ctx context.Context, svc bootstrap.ServiceContainer) error {
		snap, snapErr := svc.Analytics.Snapshot(ctx)
		if snapErr != nil {
			return fmt.Errorf("analytics snapshot: %w", snapErr)
		}
		if opts.JSON {
			if err := printJSON(cmdCtx, snap); err != nil {
				return err
			}
		} else if err := printAnalyticsTable(cmdCtx, snap.SuccessfulLogins, snap.PageVisits); err != nil {
			return err
		}
		if !opts.Reset {
			return nil
		}
		if resetErr := svc.Analytics.Reset(ctx); resetErr != nil {
			return fmt.Errorf("reset analytics: %w", resetErr)
		}
		return writeln(cmdCtx.Out, "counters reset")
	})
}

func printAnalyticsTable(cmdCtx *commandContext, logins int64, visits map[domainauth.PageID]int64) error {
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writef(tw, "successful logins\t%d\n", logins); err != nil {
		return err
	}
	pages := make([]string, 0, len(visits))
	for p := range visits {
		pages = append(pages, string(p))
	}
	sort.Strings(pages)
	for _, p := range pages {
		if err := writef(tw, "visits %s\t%d\n", p, visits[domainauth.PageID(p)]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
