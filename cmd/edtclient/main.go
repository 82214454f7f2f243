// Command edtclient is a terminal front-end for the training-center
// timetable backend: it renders the week grid, moves and deletes
// sessions with optimistic local state, and drives the change-request
// negotiation workflow.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"edtclient/config"
	"edtclient/internal/adapters/auth"
	"edtclient/internal/adapters/backend"
	"edtclient/internal/domain"
	"edtclient/internal/grid"
	"edtclient/internal/repository/cache"
	"edtclient/internal/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *backend.Client
	session *auth.Session
	holder  *auth.Holder
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg.Environment)

	holder := auth.NewHolder(auth.NewFileTokenStore(cfg.TokenFile))
	client := backend.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, holder, logger)
	session := auth.NewSession(client, holder, logger)

	// Any endpoint rejecting the token logs the session out, not just
	// the auth ones.
	client.OnUnauthorized(func() {
		logger.Warn("token rejected by backend, clearing session")
		if err := holder.Clear(); err != nil {
			logger.Warn("failed to clear token", "error", err)
		}
	})

	return &app{cfg: cfg, logger: logger, client: client, session: session, holder: holder}, nil
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.session.Logout()
	case "me":
		return a.me(ctx)
	case "show":
		return a.show(ctx, args[1:])
	case "virtual":
		return a.virtual(ctx)
	case "teacher":
		return a.teacher(ctx, args[1:])
	case "move":
		return a.move(ctx, args[1:])
	case "delete":
		return a.remove(ctx, args[1:])
	case "add":
		return a.add(ctx, args[1:])
	case "propose":
		return a.propose(ctx, args[1:])
	case "changes":
		return a.changes(ctx, args[1:])
	case "cancel":
		return a.cancel(ctx, args[1:])
	case "decide":
		return a.decide(ctx, args[1:])
	case "publish":
		return a.publish(ctx, args[1:])
	case "report":
		return a.report(ctx, args[1:])
	case "generate":
		return a.generate(ctx, args[1:])
	case "passwd":
		return a.passwd(ctx, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: edtclient <command> [flags]

commands:
  login     authenticate and store the token
  logout    drop the stored token
  me        show the logged-in user
  show      render the timetable grid
  virtual   render the draft overlay with pending proposals
  teacher   render one teacher's draft slice with their proposals
  move      move a session to another cell
  delete    delete a session
  add       add a session (admin)
  propose   submit a change request (teacher)
  changes   list change requests
  cancel    withdraw a pending change request
  decide    simulate/approve/reject a change request (admin)
  publish   publish the draft timetable (admin)
  report    download a PDF/ZIP timetable report
  generate  trigger backend timetable generation (admin)
  passwd    change the account password`)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "user id")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	u, err := a.session.Login(ctx, *user, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s, %s)\n", u.Name, u.ID, u.Role)
	return nil
}

func (a *app) me(ctx context.Context) error {
	if a.session.Authenticated() && a.holder.Expired(time.Now()) {
		fmt.Fprintln(os.Stderr, "stored token is expired, log in again")
	}
	u, err := a.session.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s, %s)\n", u.Name, u.ID, u.Role)
	if claims, err := a.holder.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Printf("token expires %s\n", claims.ExpiresAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// requireAdmin fails fast on admin-only commands using the role baked
// into the token; the backend still enforces FORBIDDEN on its side.
func (a *app) requireAdmin(command string) error {
	claims, err := a.holder.Claims()
	if err != nil {
		return err
	}
	if u := (domain.User{Role: claims.Role}); !u.IsAdmin() {
		return fmt.Errorf("%s requires the admin role (logged in as %s)", command, claims.Role)
	}
	return nil
}

// loadBoard fetches config, catalog, and the scoped timetable, and
// assembles the local cache plus coordinator.
func (a *app) loadBoard(ctx context.Context, scope domain.Scope) (*grid.Controller, *cache.SessionCache, domain.FusionExpander, error) {
	gridCfg, err := a.client.GetConfig(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	catalog, err := a.client.GetCatalog(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	snapshot, err := a.client.FetchTimetable(ctx, scope)
	if err != nil {
		return nil, nil, nil, err
	}

	expander := services.NewFusionExpander(catalog.OnlineFusions)
	sessionCache := cache.New(expander)
	sessionCache.Replace(snapshot.Sessions, snapshot.Version)

	coord := services.NewCoordinator(sessionCache, a.client, a.client, a.client, scope, a.logger, a.cfg.HTTPTimeout)
	return grid.New(*gridCfg, coord), sessionCache, expander, nil
}

func scopeFlag(fs *flag.FlagSet) *string {
	return fs.String("scope", string(domain.ScopeOfficial), "official or draft")
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	scope := scopeFlag(fs)
	formateur := fs.String("formateur", "", "filter by teacher id")
	groupe := fs.String("groupe", "", "filter by group id")
	salle := fs.String("salle", "", "filter by room id")
	fs.Parse(args)

	controller, sessionCache, expander, err := a.loadBoard(ctx, domain.Scope(*scope))
	if err != nil {
		return err
	}

	filters := []domain.Filter{
		{Type: domain.FilterFormateur, Value: orAll(*formateur)},
		{Type: domain.FilterGroupe, Value: orAll(*groupe)},
		{Type: domain.FilterSalle, Value: orAll(*salle)},
	}
	sessions := sessionCache.ApplyFilters(sessionCache.List(), filters)
	renderGrid(os.Stdout, controller, expander, sessions)
	fmt.Printf("version %d, %d sessions\n", sessionCache.Version(), len(sessions))
	return nil
}

func orAll(v string) string {
	if v == "" {
		return domain.FilterAll
	}
	return v
}

func renderGrid(out io.Writer, controller *grid.Controller, expander domain.FusionExpander, sessions []domain.Session) {
	byCell := make(map[string][]domain.Session)
	for _, s := range sessions {
		key := fmt.Sprintf("%s/%d", s.Jour, s.Creneau)
		byCell[key] = append(byCell[key], s)
	}
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprint(w, "creneau")
	for _, j := range controller.Jours() {
		fmt.Fprintf(w, "\t%s", j)
	}
	fmt.Fprintln(w)
	for _, c := range controller.Creneaux() {
		fmt.Fprintf(w, "%d", c)
		for _, j := range controller.Jours() {
			cell := byCell[fmt.Sprintf("%s/%d", j, c)]
			label := ""
			for i, s := range cell {
				if i > 0 {
					label += " | "
				}
				label += fmt.Sprintf("%s %s %s", s.Module, services.FusionLabel(expander, s.Groupe), s.Salle)
			}
			fmt.Fprintf(w, "\t%s", label)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func (a *app) virtual(ctx context.Context) error {
	vt, err := a.client.FetchVirtualTimetable(ctx)
	if err != nil {
		return err
	}
	// Recompute the overlay locally so the rendering never depends on
	// the backend having merged it.
	view := services.ReconcileVirtual(vt.Sessions, vt.PendingRequests)
	renderOverlay(os.Stdout, view)
	fmt.Printf("draft week %s revision %d, %d pending requests\n", vt.Draft.WeekStart, vt.Draft.Revision, len(vt.PendingRequests))
	return nil
}

func (a *app) teacher(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("teacher", flag.ExitOnError)
	id := fs.String("id", "", "teacher id (admin only; formateurs always see their own)")
	fs.Parse(args)

	tt, err := a.client.FetchTeacherTimetable(ctx, *id)
	if err != nil {
		return err
	}
	view := services.ReconcileVirtual(tt.Sessions, tt.PendingRequests)
	renderOverlay(os.Stdout, view)
	fmt.Printf("draft week %s revision %d, %d pending requests\n", tt.Draft.WeekStart, tt.Draft.Revision, len(tt.PendingRequests))
	return nil
}

func renderOverlay(out io.Writer, view domain.VirtualView) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tjour\tcreneau\tsalle\tgroupe\tstate")
	for _, s := range view.Base {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", s.ID, s.Jour, s.Creneau, s.Salle, s.Groupe, s.VirtualState)
	}
	for _, s := range view.Extra {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", s.ID, s.Jour, s.Creneau, s.Salle, s.Groupe, s.VirtualState)
	}
	w.Flush()
}

func (a *app) move(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	scope := scopeFlag(fs)
	session := fs.String("session", "", "session id")
	jour := fs.String("jour", "", "target day")
	creneau := fs.Int("creneau", 0, "target slot")
	salle := fs.String("salle", "", "room to use when several are free")
	fs.Parse(args)

	controller, _, _, err := a.loadBoard(ctx, domain.Scope(*scope))
	if err != nil {
		return err
	}

	outcome, err := controller.Drop(ctx, *session, *jour, *creneau)
	if err != nil {
		return err
	}
	if outcome.Status == services.MutationNeedsRoomChoice {
		if *salle == "" {
			fmt.Println("several rooms are free, pick one with -salle:")
			for _, r := range outcome.Rooms {
				fmt.Println("  ", r)
			}
			return nil
		}
		outcome, err = controller.CompleteDrop(ctx, *session, *jour, *creneau, *salle)
		if err != nil {
			return err
		}
	}
	return printOutcome(outcome)
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	scope := scopeFlag(fs)
	session := fs.String("session", "", "session id")
	fs.Parse(args)

	controller, _, _, err := a.loadBoard(ctx, domain.Scope(*scope))
	if err != nil {
		return err
	}
	outcome, err := controller.Remove(ctx, *session)
	if err != nil {
		return err
	}
	return printOutcome(outcome)
}

func printOutcome(outcome services.MutationOutcome) error {
	switch outcome.Status {
	case services.MutationConfirmed:
		fmt.Printf("%s (version %d)\n", outcome.Message, outcome.Version)
		for _, warning := range outcome.Warnings {
			fmt.Println("warning:", warning)
		}
		return nil
	case services.MutationRolledBack:
		if outcome.Refetched {
			fmt.Println("timetable changed on the server, local copy refreshed")
		}
		return fmt.Errorf("%s", outcome.Message)
	default:
		return fmt.Errorf("%s", outcome.Message)
	}
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	scope := scopeFlag(fs)
	formateur := fs.String("formateur", "", "teacher id")
	groupe := fs.String("groupe", "", "group id")
	module := fs.String("module", "", "module id")
	jour := fs.String("jour", "", "day")
	creneau := fs.Int("creneau", 0, "slot")
	salle := fs.String("salle", "", "room id")
	fs.Parse(args)

	if err := a.requireAdmin("add"); err != nil {
		return err
	}
	result, err := a.client.AddSession(ctx, domain.Scope(*scope), domain.Session{
		Formateur: *formateur,
		Groupe:    *groupe,
		Module:    *module,
		Jour:      *jour,
		Creneau:   *creneau,
		Salle:     *salle,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s (version %d)\n", result.Session.ID, result.Version)
	return nil
}

func (a *app) propose(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("propose", flag.ExitOnError)
	reqType := fs.String("type", string(domain.RequestMove), "MOVE, CHANGE_ROOM, DELETE, or INSERT")
	session := fs.String("session", "", "session id (not for INSERT)")
	groupe := fs.String("groupe", "", "group id (INSERT)")
	module := fs.String("module", "", "module id (INSERT)")
	jour := fs.String("jour", "", "target day")
	creneau := fs.Int("creneau", 0, "target slot")
	salle := fs.String("salle", "", "target room")
	motif := fs.String("motif", "", "reason shown to the admin")
	fs.Parse(args)

	created, err := a.client.ProposeChange(ctx, domain.RequestType(*reqType), *session, domain.SessionFields{
		Groupe:  *groupe,
		Module:  *module,
		Jour:    *jour,
		Creneau: *creneau,
		Salle:   *salle,
		Motif:   *motif,
	})
	if err != nil {
		return err
	}
	fmt.Printf("request %s submitted (%s)\n", created.ID, created.Status)
	return nil
}

func (a *app) changes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("changes", flag.ExitOnError)
	status := fs.String("status", "", "PENDING, APPROVED, REJECTED, SUPERSEDED")
	mine := fs.Bool("mine", false, "list only my own requests (teacher view)")
	fs.Parse(args)

	var requests []domain.ChangeRequest
	var err error
	if *mine {
		requests, err = a.client.ListMyChanges(ctx, domain.RequestStatus(*status))
	} else {
		requests, err = a.client.ListChanges(ctx, domain.RequestStatus(*status), "", "")
	}
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\ttype\tsession\tteacher\tstatus\tsubmitted")
	for _, r := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Type, r.SessionID, r.TeacherID, r.Status, r.SubmittedAt)
	}
	return w.Flush()
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.String("id", "", "request id")
	fs.Parse(args)
	if err := a.client.CancelChange(ctx, *id); err != nil {
		return err
	}
	fmt.Println("request withdrawn")
	return nil
}

func (a *app) decide(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("decide", flag.ExitOnError)
	id := fs.String("id", "", "request id")
	action := fs.String("action", "simulate", "simulate, approve, or reject")
	by := fs.String("by", "ADMIN", "decider recorded on the request")
	reason := fs.String("reason", "", "rejection reason")
	fs.Parse(args)

	if err := a.requireAdmin("decide"); err != nil {
		return err
	}
	switch *action {
	case "simulate":
		result, err := a.client.SimulateChange(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("%s (would become version %d)\n", result.Message, result.NewVersionWouldBe)
	case "approve":
		result, err := a.client.ApproveChange(ctx, *id, *by)
		if err != nil {
			return err
		}
		fmt.Printf("%s (version %d)\n", result.Message, result.Version)
	case "reject":
		req, err := a.client.RejectChange(ctx, *id, *by, *reason)
		if err != nil {
			return err
		}
		fmt.Printf("request %s rejected\n", req.ID)
	default:
		return fmt.Errorf("unknown action %q", *action)
	}
	return nil
}

func (a *app) publish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	week := fs.String("week", "", "week start (YYYY-MM-DD)")
	fs.Parse(args)

	if err := a.requireAdmin("publish"); err != nil {
		return err
	}
	result, err := a.client.Publish(ctx, *week)
	if err != nil {
		return err
	}
	fmt.Printf("%s: version %d with %d sessions, next week %s (revision %d)\n",
		result.Message, result.Published.Version, result.Published.Sessions,
		result.Next.WeekStart, result.Next.Revision)
	return nil
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	kind := fs.String("kind", backend.ReportFormateur, "formateur, groupe, salle, or all")
	id := fs.String("id", "", "entity id")
	out := fs.String("out", "", "output file")
	fs.Parse(args)

	if *out == "" {
		return fmt.Errorf("-out is required")
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	var n int64
	if *kind == "all" {
		n, err = a.client.DownloadAllReports(ctx, f)
	} else {
		n, err = a.client.DownloadReport(ctx, *kind, *id, f)
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", n, *out)
	return nil
}

func (a *app) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	apply := fs.Bool("apply", false, "apply the generated timetable")
	strategy := fs.String("strategy", "", "generator strategy")
	fs.Parse(args)

	if err := a.requireAdmin("generate"); err != nil {
		return err
	}
	result, err := a.client.RunGeneration(ctx, backend.GenerateOptions{Strategy: *strategy, Apply: *apply})
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	for _, warning := range result.Warnings {
		fmt.Println("warning:", warning)
	}
	return nil
}

func (a *app) passwd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	oldPassword := fs.String("old", "", "current password")
	newPassword := fs.String("new", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	fs.Parse(args)

	if err := a.session.ChangePassword(ctx, *oldPassword, *newPassword, *confirm); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}
