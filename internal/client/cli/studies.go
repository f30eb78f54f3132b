package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbsr/biobank/internal/domain"
)

func (a *App) Studies(ctx context.Context, args []string) error {
	opts := domain.ListOptions{Sort: "name", PageSize: 50}
	if len(args) > 0 {
		opts.Filter = strings.Join(args, " ")
	}
	page, err := a.studies.List(ctx, opts)
	if err != nil {
		return err
	}
	printStudies(a.out, page)
	return nil
}

func (a *App) Study(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("study <id>")
	}
	study, err := a.studies.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printStudy(a.out, study)
	return nil
}

func (a *App) StudyAdd(ctx context.Context) error {
	name, err := promptRequired(a.reader, "Study name", a.out)
	if err != nil {
		return err
	}
	description, err := promptText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	study, err := a.studies.Add(ctx, name, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Study %s added with ID %s\n", study.Name, study.ID)
	return nil
}

func (a *App) StudyName(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("study-name <id>")
	}
	study, err := a.studies.Get(ctx, args[0])
	if err != nil {
		return err
	}
	name, err := promptLine(a.reader, fmt.Sprintf("New name (currently %q)", study.Name), a.out)
	if err != nil {
		return err
	}
	updated, err := a.studies.UpdateName(ctx, study, name)
	if err != nil {
		return err
	}
	printUpdated(a.out, "Study", &updated.Entity)
	return nil
}

func (a *App) StudyDescription(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("study-desc <id>")
	}
	study, err := a.studies.Get(ctx, args[0])
	if err != nil {
		return err
	}
	description, err := promptText(a.reader, "New description (empty clears it)", a.out)
	if err != nil {
		return err
	}
	updated, err := a.studies.UpdateDescription(ctx, study, description)
	if err != nil {
		return err
	}
	printUpdated(a.out, "Study", &updated.Entity)
	return nil
}

// StudyState applies action (enable, disable, retire or unretire).
func (a *App) StudyState(ctx context.Context, action string, args []string) error {
	if len(args) != 1 {
		return usageError(fmt.Sprintf("study-%s <id>", action))
	}
	study, err := a.studies.Get(ctx, args[0])
	if err != nil {
		return err
	}

	var updated *domain.Study
	switch action {
	case "enable":
		updated, err = a.studies.Enable(ctx, study)
	case "disable":
		updated, err = a.studies.Disable(ctx, study)
	case "retire":
		updated, err = a.studies.Retire(ctx, study)
	case "unretire":
		updated, err = a.studies.Unretire(ctx, study)
	default:
		return fmt.Errorf("unknown study action %q", action)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Study %s is now %s\n", updated.Name, updated.Status)
	return nil
}

func (a *App) Participant(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("participant <studyId> <uniqueId>")
	}
	study, err := a.studies.Get(ctx, args[0])
	if err != nil {
		return err
	}
	p, err := a.participants.GetByUniqueID(ctx, study, args[1])
	if err != nil {
		return err
	}
	printParticipant(a.out, p)
	return nil
}

func (a *App) CeventTypes(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("cetypes <studyId>")
	}
	types, err := a.ceventTypes.List(ctx, args[0])
	if err != nil {
		return err
	}
	printCeventTypes(a.out, types)
	return nil
}
