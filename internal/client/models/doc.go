// Package models holds the client-side data types exchanged with the
// HospiVibe backend: users and roles, the persisted session, appointments
// and nurse patient records.
package models
