// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package handoff

import (
	"context"

	"open-swarm/internal/conflict"
)

// ReservationLookup supplies the file-pattern reservations a given agent
// currently holds, so the default file-reservation collector can surface
// them to the next agent in a handoff.
type ReservationLookup func(agentName string) []conflict.Reservation

// RegisterFileReservationCollector wires a default collector under the
// "conflict" module, "fileReservations" slot: it reports the reservations
// the outgoing agent holds so the incoming agent can see what's locked
// before attempting an overlapping edit. This adapts the teacher's
// conflict.Analyzer/Reservation shapes onto the Handoff Context Bus rather
// than the Agent Mail file-locking workflow they originally served.
func RegisterFileReservationCollector(bus *Bus, lookup ReservationLookup) {
	bus.RegisterCollector("conflict", "fileReservations", func(ctx context.Context, fromAgent, toAgent, taskID string) (any, error) {
		reservations := lookup(fromAgent)
		if len(reservations) == 0 {
			return nil, nil
		}
		out := make([]conflict.Reservation, len(reservations))
		copy(out, reservations)
		return out, nil
	})
}
