package scm

import (
	"errors"
	"testing"
	"time"
)

func TestProviderTypeValid(t *testing.T) {
	if !ProviderGitHub.Valid() {
		t.Error("ProviderGitHub.Valid() = false")
	}
	if ProviderType("bitbucket").Valid() {
		t.Error("unknown provider reported valid")
	}
}

func TestParsePermissionLevel(t *testing.T) {
	cases := map[string]PermissionLevel{
		"admin":    PermissionAdmin,
		"ADMIN":    PermissionAdmin,
		"maintain": PermissionWrite,
		"write":    PermissionWrite,
		"triage":   PermissionRead,
		"read":     PermissionRead,
		"none":     PermissionNone,
	}
	for in, want := range cases {
		got, err := ParsePermissionLevel(in)
		if err != nil {
			t.Errorf("ParsePermissionLevel(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePermissionLevel(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParsePermissionLevel("superuser"); !errors.Is(err, ErrInternal) {
		t.Errorf("unknown level error = %v, want ErrInternal", err)
	}
}

func TestParseOwnerType(t *testing.T) {
	if got, err := ParseOwnerType("Organization"); err != nil || got != OwnerOrganization {
		t.Errorf("ParseOwnerType(Organization) = %q, %v", got, err)
	}
	if _, err := ParseOwnerType("Bot"); !errors.Is(err, ErrInternal) {
		t.Errorf("ParseOwnerType(Bot) error = %v, want ErrInternal", err)
	}
}

func TestRepositoryRecordValidate(t *testing.T) {
	valid := func() *RepositoryRecord {
		return &RepositoryRecord{
			ID:    1296269,
			Name:  "Hello-World",
			URL:   "https://github.com/octocat/Hello-World",
			Owner: RepositoryOwner{Login: "octocat", Type: OwnerUser},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() on valid record: %v", err)
	}

	mutations := map[string]func(r *RepositoryRecord){
		"missing id":         func(r *RepositoryRecord) { r.ID = 0 },
		"missing name":       func(r *RepositoryRecord) { r.Name = "" },
		"missing url":        func(r *RepositoryRecord) { r.URL = "" },
		"missing owner":      func(r *RepositoryRecord) { r.Owner.Login = "" },
		"unknown owner type": func(r *RepositoryRecord) { r.Owner.Type = "Enterprise" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := valid()
			mutate(r)
			if err := r.Validate(); !errors.Is(err, ErrInternal) {
				t.Errorf("Validate() = %v, want ErrInternal", err)
			}
		})
	}
}

func TestOrgMembershipIsActiveAdmin(t *testing.T) {
	cases := []struct {
		m    *OrgMembership
		want bool
	}{
		{&OrgMembership{Role: RoleAdmin, State: StateActive}, true},
		{&OrgMembership{Role: RoleAdmin, State: StatePending}, false},
		{&OrgMembership{Role: RoleMember, State: StateActive}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := tc.m.IsActiveAdmin(); got != tc.want {
			t.Errorf("IsActiveAdmin(%+v) = %v, want %v", tc.m, got, tc.want)
		}
	}
}

func TestParseStateFilter(t *testing.T) {
	cases := map[string]StateFilter{
		"":       FilterAll,
		"all":    FilterAll,
		"open":   FilterOpen,
		"Closed": FilterClosed,
		"merged": FilterMerged,
	}
	for in, want := range cases {
		got, err := ParseStateFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseStateFilter(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStateFilter("draft"); !errors.Is(err, ErrInvalidStateFilter) {
		t.Errorf("ParseStateFilter(draft) error = %v, want %v", err, ErrInvalidStateFilter)
	}
}

func TestStateFilterMatches(t *testing.T) {
	mergedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	open := &PullRequestRecord{State: PullRequestOpen}
	closed := &PullRequestRecord{State: PullRequestClosed}
	merged := &PullRequestRecord{State: PullRequestMerged, MergedAt: &mergedAt}
	closedWithMerge := &PullRequestRecord{State: PullRequestClosed, MergedAt: &mergedAt}

	cases := []struct {
		filter StateFilter
		pr     *PullRequestRecord
		want   bool
	}{
		{FilterOpen, open, true},
		{FilterOpen, closed, false},
		{FilterClosed, closed, true},
		{FilterClosed, merged, false},
		{FilterClosed, closedWithMerge, false},
		{FilterMerged, merged, true},
		{FilterMerged, closedWithMerge, true},
		{FilterMerged, open, false},
		{FilterAll, open, true},
		{FilterAll, merged, true},
	}
	for _, tc := range cases {
		if got := tc.filter.Matches(tc.pr); got != tc.want {
			t.Errorf("%s.Matches(state=%s merged=%v) = %v, want %v",
				tc.filter, tc.pr.State, tc.pr.MergedAt != nil, got, tc.want)
		}
	}
}
