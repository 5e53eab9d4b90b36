package policy_test

import (
	"context"
	"testing"

	"github.com/olenaliuby/social-media-api/policy"
)

type authoredThing struct {
	authorID uint
}

func (a *authoredThing) GetAuthorID() uint { return a.authorID }

type plainThing struct{}

func TestAuthorOrReadOnly_ReadsAllowed(t *testing.T) {
	p := policy.NewAuthorOrReadOnly()
	ctx := context.Background()
	post := &authoredThing{authorID: 42}

	if !p.Can(ctx, 7, policy.ActionView, post) {
		t.Error("Expected any profile to view")
	}
	if !p.Can(ctx, 7, policy.ActionList, nil) {
		t.Error("Expected any profile to list")
	}
}

func TestAuthorOrReadOnly_WritesNeedAuthor(t *testing.T) {
	p := policy.NewAuthorOrReadOnly()
	ctx := context.Background()
	post := &authoredThing{authorID: 42}

	if !p.Can(ctx, 42, policy.ActionUpdate, post) {
		t.Error("Expected author to update")
	}
	if !p.Can(ctx, 42, policy.ActionDelete, post) {
		t.Error("Expected author to delete")
	}
	if p.Can(ctx, 7, policy.ActionUpdate, post) {
		t.Error("Expected non-author to be denied update")
	}
	if p.Can(ctx, 7, policy.ActionDelete, post) {
		t.Error("Expected non-author to be denied delete")
	}
}

func TestAuthorOrReadOnly_Edges(t *testing.T) {
	p := policy.NewAuthorOrReadOnly()
	ctx := context.Background()

	if p.Can(ctx, 0, policy.ActionView, &authoredThing{authorID: 1}) {
		t.Error("Expected anonymous caller to be denied")
	}
	if p.Can(ctx, 1, policy.ActionUpdate, &plainThing{}) {
		t.Error("Expected resource without author to be denied")
	}
	if !p.Can(ctx, 1, policy.ActionCreate, nil) {
		t.Error("Expected create without resource to be allowed")
	}
}
