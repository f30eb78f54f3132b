package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cbsr/biobank/internal/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printUpdated(w io.Writer, what string, e *domain.Entity) {
	fmt.Fprintf(w, "%s %s updated (version %d)\n", what, e.ID, e.Version)
}

func printUser(w io.Writer, u *domain.User) {
	fmt.Fprintf(w, "%s <%s> (%s)\n", u.Name, u.Email, u.Status)
}

func printStudies(w io.Writer, page *domain.PagedResult[*domain.Study]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tVERSION")
	for _, s := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.ID, s.Name, s.Status, s.Version)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d of %d studies\n", len(page.Items), page.Total)
}

func printStudy(w io.Writer, s *domain.Study) {
	fmt.Fprintf(w, "%s (%s, version %d)\n", s.Name, s.Status, s.Version)
	if s.Description != "" {
		fmt.Fprintln(w, s.Description)
	}
	printAnnotationTypes(w, s.AnnotationTypes)
}

func printAnnotationTypes(w io.Writer, types []domain.AnnotationType) {
	if len(types) == 0 {
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ANNOTATION\tTYPE\tREQUIRED\tOPTIONS")
	for _, at := range types {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%v\n", at.Name, at.ValueType, at.Required, at.Options)
	}
	_ = tw.Flush()
}

func printParticipant(w io.Writer, p *domain.Participant) {
	fmt.Fprintf(w, "Participant %s (version %d)\n", p.UniqueID, p.Version)
	tw := newTable(w)
	for _, a := range p.AnnotationList() {
		value := a.DisplayValue()
		if !a.HasValue() {
			value = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", a.AnnotationType().Name, value)
	}
	_ = tw.Flush()
}

func printCeventTypes(w io.Writer, types []*domain.CollectionEventType) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tRECURRING\tSPECIMENS")
	for _, c := range types {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%d\n", c.ID, c.Name, c.Recurring, len(c.SpecimenSpecs))
	}
	_ = tw.Flush()
}

func printCentres(w io.Writer, page *domain.PagedResult[*domain.Centre]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tLOCATIONS")
	for _, c := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Status, len(c.Locations))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d of %d centres\n", len(page.Items), page.Total)
}

func printCentre(w io.Writer, c *domain.Centre) {
	fmt.Fprintf(w, "%s (%s, version %d)\n", c.Name, c.Status, c.Version)
	tw := newTable(w)
	for _, l := range c.Locations {
		fmt.Fprintf(tw, "  %s\t%s, %s, %s\t%s\n", l.Name, l.Street, l.City, l.Province, l.CountryISOCode)
	}
	_ = tw.Flush()
}

func printShipments(w io.Writer, page *domain.PagedResult[*domain.Shipment]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATE\tCOURIER\tTRACKING\tFROM\tTO")
	for _, s := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.State, s.CourierName, s.TrackingNumber,
			s.FromLocationInfo.Name, s.ToLocationInfo.Name)
	}
	_ = tw.Flush()
}
