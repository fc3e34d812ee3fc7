// Package workout holds the static default plan and the pure functions
// that keep a client's cached workout state consistent with it.
package workout

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"gymlog/internal/models"
)

// Fingerprint hashes the plan's canonical JSON. It only has to detect
// change, so a fast non-cryptographic hash is enough.
func Fingerprint(plan models.WorkoutPlan) string {
	b, err := json.Marshal(plan)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// defaultFingerprint returns the plan's fingerprint only when the plan is
// the canonical one. Custom plans carry no fingerprint.
func defaultFingerprint(plan *models.WorkoutPlan, canonical models.WorkoutPlan) *string {
	if plan == nil {
		return nil
	}
	fp := Fingerprint(*plan)
	if fp == "" || fp != Fingerprint(canonical) {
		return nil
	}
	return &fp
}
