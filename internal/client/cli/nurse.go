package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hospivibe/internal/client/forms"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

func (a *App) Patients(ctx context.Context, _ []string) error {
	list, err := a.nurse.Patients(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No patients assigned.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{p.ID, p.Name, p.Room, string(p.Status), string(p.Priority), p.Notes})
	}
	a.printf("%s", table([]string{"ID", "NAME", "ROOM", "STATUS", "PRIORITY", "NOTES"}, rows))
	return nil
}

func (a *App) AddPatient(ctx context.Context, _ []string) error {
	f, err := a.patientForm(models.PatientRecord{Status: models.PatientStable, Priority: models.PriorityNormal})
	if err != nil {
		return err
	}
	p, err := a.nurse.AddPatient(ctx, f)
	if err != nil {
		return err
	}
	a.printf("Patient %s added to room %s.", p.Name, p.Room)
	return nil
}

// UpdatePatient edits a record; empty answers keep the current values.
func (a *App) UpdatePatient(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Patient id")
	if err != nil {
		return err
	}

	list, err := a.nurse.Patients(ctx)
	if err != nil {
		return err
	}
	var current *models.PatientRecord
	for i := range list {
		if list[i].ID == id {
			current = &list[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("patient %s not found", id)
	}

	f, err := a.patientForm(*current)
	if err != nil {
		return err
	}
	p, err := a.nurse.UpdatePatient(ctx, id, f)
	if err != nil {
		return err
	}
	a.printf("Patient %s updated.", p.Name)
	return nil
}

func (a *App) Shift(ctx context.Context, _ []string) error {
	sum, err := a.nurse.Shift(ctx)
	if err != nil {
		return err
	}
	a.printf("Patients attended:        %d", sum.Stats.PatientsAttended)
	a.printf("Medications administered: %d", sum.Stats.MedicationsAdministered)
	a.printf("Vitals recorded:          %d", sum.Stats.VitalsRecorded)
	a.printf("Notes updated:            %d", sum.Stats.NotesUpdated)
	if len(sum.Notes) > 0 {
		a.printf("Handover notes:")
		for _, n := range sum.Notes {
			a.printf("  - %s", n)
		}
	}
	return nil
}

// patientForm prompts for every intake field, offering cur as defaults.
func (a *App) patientForm(cur models.PatientRecord) (forms.PatientIntake, error) {
	ask := func(label, def string) (string, error) {
		prompt := label
		if def != "" {
			prompt = fmt.Sprintf("%s [%s]", label, def)
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return "", err
		}
		if v == "" {
			return def, nil
		}
		return v, nil
	}

	var f forms.PatientIntake
	var err error
	if f.Name, err = ask("Patient name", cur.Name); err != nil {
		return f, err
	}
	if f.Room, err = ask("Room", cur.Room); err != nil {
		return f, err
	}
	if f.Status, err = ask("Status (Stable, Needs Attention, Improving, Critical)", string(cur.Status)); err != nil {
		return f, err
	}
	if f.Priority, err = ask("Priority (High, Normal, Low)", string(cur.Priority)); err != nil {
		return f, err
	}
	if f.Notes, err = ask("Notes", cur.Notes); err != nil {
		return f, err
	}
	return f, nil
}
