// Package model declares the chat schema served by the demo server:
// users write messages into rooms, rooms are live and push updates to
// their subscribers.
package model

import (
	"strings"

	"skylark/internal/entity"
)

// Schema bundles the resolved types together with the descriptor handles
// the server and tests need.
type Schema struct {
	Model *entity.Model

	User       *entity.Type
	Room       *entity.Type
	Message    *entity.Type
	Membership *entity.Type

	UserName  *entity.Property
	UserEmail *entity.Property
	RoomName  *entity.Property

	MessageBody   *entity.Property
	MessageAuthor *entity.Reference
	MessageRoom   *entity.Reference

	MembershipRoom   *entity.Reference
	MembershipMember *entity.Property
	MembershipRole   *entity.Property
}

func nonEmpty(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}

func New() (*Schema, error) {
	s := &Schema{}

	ub := entity.NewBuilder("user")
	ub.AutoKey("id")
	s.UserName = ub.String("name", entity.Constraint(nonEmpty))
	s.UserEmail = ub.String("email", entity.Optional())
	user, err := ub.Build()
	if err != nil {
		return nil, err
	}
	s.User = user

	rb := entity.NewBuilder("room").RealTime()
	rb.AutoKey("id")
	s.RoomName = rb.String("name", entity.Constraint(nonEmpty))
	room, err := rb.Build()
	if err != nil {
		return nil, err
	}
	s.Room = room

	mb := entity.NewBuilder("message").RealTime()
	mb.AutoKey("id")
	s.MessageBody = mb.String("body")
	s.MessageAuthor = mb.Reference("author", user)
	s.MessageRoom = mb.Reference("room", room)
	message, err := mb.Build()
	if err != nil {
		return nil, err
	}
	s.Message = message

	// Composite key: one reference plus a plain member id.
	sb := entity.NewBuilder("membership")
	s.MembershipRoom = sb.Reference("room", room)
	s.MembershipMember = sb.Int("member")
	s.MembershipRole = sb.String("role", entity.Optional())
	sb.Key(s.MembershipRoom, s.MembershipMember)
	membership, err := sb.Build()
	if err != nil {
		return nil, err
	}
	s.Membership = membership

	s.Model = entity.NewModel(user, room, message, membership)
	return s, nil
}
