package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/cbsr/biobank/internal/client/client"
	"github.com/cbsr/biobank/internal/client/config"
	"github.com/cbsr/biobank/internal/client/repositories/session"
	"github.com/cbsr/biobank/internal/client/services"
	"github.com/cbsr/biobank/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	users        services.UserService
	studies      services.StudyService
	participants services.ParticipantService
	ceventTypes  services.CeventTypeService
	centres      services.CentreService
	shipments    services.ShipmentService

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, "text", c.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing session database: %w", err)
	}

	api, err := client.NewRESTClient(c.ServerURL, c.RequestTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		users:        services.NewUserService(api, api, session.NewSQLiteRepository(db), logger),
		studies:      services.NewStudyService(api),
		participants: services.NewParticipantService(api),
		ceventTypes:  services.NewCeventTypeService(api),
		centres:      services.NewCentreService(api),
		shipments:    services.NewShipmentService(api),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

// Run resumes a saved session when there is one and then reads commands
// until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Biobank CLI (type 'help' for commands)")
	if user, err := a.users.Resume(ctx); err == nil {
		printlnFn("Welcome back,", user.Name)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.users.IsAuthenticated()
}

func (a *App) getStatus() string {
	if u := a.users.CurrentUser(); u != nil {
		return u.Email
	}
	return "guest"
}
