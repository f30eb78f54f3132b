package cli

import (
	"context"
	"strings"

	"github.com/cbsr/biobank/internal/domain"
)

func (a *App) Centres(ctx context.Context, args []string) error {
	opts := domain.ListOptions{Sort: "name", PageSize: 50}
	if len(args) > 0 {
		opts.Filter = strings.Join(args, " ")
	}
	page, err := a.centres.List(ctx, opts)
	if err != nil {
		return err
	}
	printCentres(a.out, page)
	return nil
}

func (a *App) Centre(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("centre <id>")
	}
	centre, err := a.centres.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printCentre(a.out, centre)
	return nil
}

func (a *App) Shipments(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("shipments <centreId>")
	}
	page, err := a.shipments.List(ctx, args[0], domain.ListOptions{PageSize: 50})
	if err != nil {
		return err
	}
	printShipments(a.out, page)
	return nil
}
