package domain

import "fmt"

// Room is not safe for concurrent use; the registry serializes access to it.
type Room struct {
	id                 string
	members            Members
	driftThresholdSecs uint64
}

func NewRoom(id string, creator Player, driftThresholdSecs uint64) *Room {
	r := &Room{
		id:                 id,
		driftThresholdSecs: driftThresholdSecs,
	}
	r.members.Add(creator)

	return r
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) DriftThresholdSecs() uint64 {
	return r.driftThresholdSecs
}

func (r *Room) Members() []Membership {
	return r.members.AsList()
}

// AddMember is idempotent: joining twice with the same id is a no-op.
func (r *Room) AddMember(player Player) {
	r.members.Add(player)
}

func (r *Room) AttachDelivery(playerID string, outbox *Outbox) error {
	member := r.members.getMutByID(playerID)
	if member == nil {
		return fmt.Errorf("failed to attach delivery to %q: %w", playerID, ErrMemberNotFound)
	}

	member.delivery = outbox
	return nil
}

func (r *Room) DetachDelivery(playerID string) error {
	member := r.members.getMutByID(playerID)
	if member == nil {
		return fmt.Errorf("failed to detach delivery from %q: %w", playerID, ErrMemberNotFound)
	}

	member.delivery = nil
	return nil
}

func (r *Room) RemoveMember(playerID string) (Membership, error) {
	member, err := r.members.RemoveByID(playerID)
	if err != nil {
		return Membership{}, fmt.Errorf("failed to remove %q: %w", playerID, err)
	}

	return member, nil
}

func (r *Room) Find(playerID string) (Membership, bool) {
	member, _, err := r.members.GetByID(playerID)
	return member, err == nil
}

// FindMut returns a pointer into the member list, valid until the next membership change.
func (r *Room) FindMut(playerID string) *Membership {
	return r.members.getMutByID(playerID)
}

// SetState records a readiness report for playerID.
func (r *Room) SetState(playerID string, state ReadinessState) error {
	member := r.members.getMutByID(playerID)
	if member == nil {
		return fmt.Errorf("failed to set state of %q: %w", playerID, ErrMemberNotFound)
	}

	member.State = state
	return nil
}

// IsEmpty reports whether nobody is connected: the room has no members,
// or none of its members has a live delivery attached.
func (r *Room) IsEmpty() bool {
	for _, member := range r.members.list {
		if member.IsConnected() {
			return false
		}
	}

	return true
}

type RoomSnapshot struct {
	ID                 string           `json:"id"`
	DriftThresholdSecs uint64           `json:"drift_threshold_secs"`
	Players            []MemberSnapshot `json:"players"`
}

func (r *Room) Snapshot() RoomSnapshot {
	players := make([]MemberSnapshot, 0, r.members.Length())
	for _, member := range r.members.list {
		players = append(players, member.Snapshot())
	}

	return RoomSnapshot{
		ID:                 r.id,
		DriftThresholdSecs: r.driftThresholdSecs,
		Players:            players,
	}
}

// Audience copies the delivery handles of connected members so that a
// broadcast can run after the room is released.
func (r *Room) Audience() Audience {
	audience := make(Audience, 0, r.members.Length())
	for _, member := range r.members.list {
		if member.delivery != nil {
			audience = append(audience, Recipient{
				PlayerID: member.Player.ID,
				Outbox:   member.delivery,
			})
		}
	}

	return audience
}
