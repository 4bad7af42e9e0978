package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/hospivibe/internal/client/forms"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

func (a *App) Appointments(ctx context.Context, _ []string) error {
	list, err := a.appointments.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No appointments.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, ap := range list {
		rows = append(rows, []string{
			ap.ID, ap.Date, ap.Time,
			nameOf(ap.Patient, ap.PatientID), nameOf(ap.Doctor, ap.DoctorID),
			string(ap.Status), ap.Reason,
		})
	}
	a.printf("%s", table([]string{"ID", "DATE", "TIME", "PATIENT", "DOCTOR", "STATUS", "REASON"}, rows))
	return nil
}

func (a *App) Doctors(ctx context.Context, _ []string) error {
	docs, err := a.appointments.Doctors(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		a.printf("No doctors available.")
		return nil
	}
	rows := make([][]string, 0, len(docs))
	for i, d := range docs {
		rows = append(rows, []string{strconv.Itoa(i + 1), d.ID, d.Name, d.Email})
	}
	a.printf("%s", table([]string{"#", "ID", "NAME", "EMAIL"}, rows))
	return nil
}

// Schedule books an appointment. The doctor may be given by list number
// or id.
func (a *App) Schedule(ctx context.Context, _ []string) error {
	docs, err := a.appointments.Doctors(ctx)
	if err != nil {
		return err
	}
	for i, d := range docs {
		a.printf("%d. %s (%s)", i+1, d.Name, d.ID)
	}

	doctor, err := getSimpleText(a.reader, "Doctor (number or id)", a.out)
	if err != nil {
		return err
	}
	if n, convErr := strconv.Atoi(doctor); convErr == nil && n >= 1 && n <= len(docs) {
		doctor = docs[n-1].ID
	}

	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}
	slot, err := getSimpleText(a.reader, "Time ("+strings.Join(models.TimeSlots, ", ")+")", a.out)
	if err != nil {
		return err
	}
	reason, err := getSimpleText(a.reader, "Reason for visit", a.out)
	if err != nil {
		return err
	}

	ap, err := a.appointments.Schedule(ctx, forms.Appointment{DoctorID: doctor, Date: date, Time: slot, Reason: reason})
	if err != nil {
		return err
	}
	if ap != nil && ap.ID != "" {
		a.printf("Appointment %s scheduled for %s at %s.", ap.ID, date, slot)
	} else {
		a.printf("Appointment scheduled for %s at %s.", date, slot)
	}
	return nil
}

func (a *App) Cancel(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Appointment id")
	if err != nil {
		return err
	}
	if _, err := a.appointments.Cancel(ctx, id); err != nil {
		return err
	}
	a.printf("Appointment %s cancelled.", id)
	return nil
}

// Complete marks an appointment completed with optional doctor notes.
func (a *App) Complete(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Appointment id")
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Doctor notes (optional)", a.out)
	if err != nil {
		return err
	}
	if _, err := a.appointments.Complete(ctx, id, notes); err != nil {
		return err
	}
	a.printf("Appointment %s completed.", id)
	return nil
}

func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func nameOf(u *models.UserSummary, fallback string) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	return fallback
}
