package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// BoardRole is a member's role inside a family board.
type BoardRole string

// Board roles.
const (
	BoardRoleOwner     BoardRole = "OWNER"
	BoardRoleCaregiver BoardRole = "CAREGIVER"
	BoardRoleViewer    BoardRole = "VIEWER"
)

// FamilyMember is one member of a family board.
type FamilyMember struct {
	MemberID string    `json:"memberId"`
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     BoardRole `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// FamilyBoard groups a senior with their caregivers and viewers.
type FamilyBoard struct {
	BoardID   string         `json:"boardId"`
	Name      string         `json:"name"`
	OwnerID   string         `json:"ownerId"`
	Members   []FamilyMember `json:"members"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Invitation is a pending invite to join a board.
type Invitation struct {
	InvitationID string    `json:"invitationId"`
	BoardID      string    `json:"boardId"`
	BoardName    string    `json:"boardName"`
	InviterName  string    `json:"inviterName"`
	Email        string    `json:"email"`
	Role         BoardRole `json:"role"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// InviteRequest invites someone to a board by email.
type InviteRequest struct {
	Email string    `json:"email"`
	Role  BoardRole `json:"role"`
}

// FamilyBoardService manages family boards, their members, and invitations.
type FamilyBoardService struct {
	client *session.Client
}

// NewFamilyBoardService creates a FamilyBoardService over the shared
// session client.
func NewFamilyBoardService(client *session.Client) *FamilyBoardService {
	return &FamilyBoardService{client: client}
}

// List returns the boards the authenticated user belongs to.
func (s *FamilyBoardService) List(ctx context.Context) ([]FamilyBoard, error) {
	resp, err := s.client.Get(ctx, "/v1/family-board", nil)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]FamilyBoard](resp, "failed to load family boards")
}

// Get fetches a single board with its member list.
func (s *FamilyBoardService) Get(ctx context.Context, boardID string) (FamilyBoard, error) {
	resp, err := s.client.Get(ctx, "/v1/family-board/"+boardID, nil)
	if err != nil {
		return FamilyBoard{}, err
	}
	return session.Unwrap[FamilyBoard](resp, fmt.Sprintf("failed to load board %s", boardID))
}

// Create makes a new board owned by the authenticated user.
func (s *FamilyBoardService) Create(ctx context.Context, name string) (FamilyBoard, error) {
	resp, err := s.client.Post(ctx, "/v1/family-board", map[string]string{"name": name})
	if err != nil {
		return FamilyBoard{}, err
	}
	return session.Unwrap[FamilyBoard](resp, "failed to create family board")
}

// Invite sends an invitation to join a board.
func (s *FamilyBoardService) Invite(ctx context.Context, boardID string, req InviteRequest) (Invitation, error) {
	resp, err := s.client.Post(ctx, "/v1/family-board/"+boardID+"/invitations", req)
	if err != nil {
		return Invitation{}, err
	}
	return session.Unwrap[Invitation](resp, "failed to send invitation")
}

// Invitations lists the authenticated user's pending invitations.
func (s *FamilyBoardService) Invitations(ctx context.Context) ([]Invitation, error) {
	resp, err := s.client.Get(ctx, "/v1/family-board/invitations", nil)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]Invitation](resp, "failed to load invitations")
}

// Accept joins the board an invitation points at.
func (s *FamilyBoardService) Accept(ctx context.Context, invitationID string) (FamilyBoard, error) {
	resp, err := s.client.Post(ctx, "/v1/family-board/invitations/"+invitationID+"/accept", nil)
	if err != nil {
		return FamilyBoard{}, err
	}
	return session.Unwrap[FamilyBoard](resp, "failed to accept invitation")
}

// Decline rejects an invitation.
func (s *FamilyBoardService) Decline(ctx context.Context, invitationID string) error {
	resp, err := s.client.Post(ctx, "/v1/family-board/invitations/"+invitationID+"/decline", nil)
	if err != nil {
		return err
	}
	return session.CheckEnvelope(resp, "failed to decline invitation")
}

// UpdateMemberRole changes a member's role on a board. Only the owner may
// do this, and the owner role itself cannot be granted here.
func (s *FamilyBoardService) UpdateMemberRole(ctx context.Context, boardID, memberID string, role BoardRole) (FamilyMember, error) {
	body := map[string]BoardRole{"role": role}
	resp, err := s.client.Patch(ctx, "/v1/family-board/"+boardID+"/members/"+memberID, body)
	if err != nil {
		return FamilyMember{}, err
	}
	return session.Unwrap[FamilyMember](resp, "failed to update member role")
}

// RemoveMember removes a member from a board. Only the owner may do this.
func (s *FamilyBoardService) RemoveMember(ctx context.Context, boardID, memberID string) error {
	resp, err := s.client.Delete(ctx, "/v1/family-board/"+boardID+"/members/"+memberID)
	if err != nil {
		return err
	}
	return session.CheckEnvelope(resp, "failed to remove member")
}
