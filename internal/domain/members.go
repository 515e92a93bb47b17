package domain

import "errors"

var ErrMemberNotFound = errors.New("member not found")

// Membership is a player's record within one room.
type Membership struct {
	Player   Player
	State    ReadinessState
	delivery *Outbox
}

func (m Membership) IsConnected() bool {
	return m.delivery != nil
}

func (m Membership) Delivery() *Outbox {
	return m.delivery
}

type MemberSnapshot struct {
	Player      Player         `json:"player"`
	IsConnected bool           `json:"is_connected"`
	State       ReadinessState `json:"state"`
}

func (m Membership) Snapshot() MemberSnapshot {
	return MemberSnapshot{
		Player:      m.Player,
		IsConnected: m.IsConnected(),
		State:       m.State,
	}
}

// Members keeps memberships in join order, unique by player id.
type Members struct {
	list []Membership
}

func (m Members) Length() int {
	return len(m.list)
}

func (m Members) AsList() []Membership {
	list := make([]Membership, len(m.list))
	copy(list, m.list)
	return list
}

func (m Members) GetByID(id string) (Membership, int, error) {
	for index, member := range m.list {
		if member.Player.ID == id {
			return member, index, nil
		}
	}

	return Membership{}, 0, ErrMemberNotFound
}

func (m *Members) getMutByID(id string) *Membership {
	for index := range m.list {
		if m.list[index].Player.ID == id {
			return &m.list[index]
		}
	}

	return nil
}

// Add appends player unless already present. It reports whether the player was added.
func (m *Members) Add(player Player) bool {
	if _, _, err := m.GetByID(player.ID); err == nil {
		return false
	}

	m.list = append(m.list, Membership{
		Player: player,
		State:  NotReady{},
	})
	return true
}

func (m *Members) RemoveByID(id string) (Membership, error) {
	member, index, err := m.GetByID(id)
	if err != nil {
		return Membership{}, err
	}

	m.list = append(m.list[:index], m.list[index+1:]...)
	return member, nil
}
