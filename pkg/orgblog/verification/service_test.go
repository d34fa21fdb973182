package verification

import (
	"context"
	"sync"
	"testing"

	"github.com/mikepea/orgblog/pkg/orgblog/apperr"
	"github.com/mikepea/orgblog/pkg/orgblog/models"
	"github.com/mikepea/orgblog/pkg/orgblog/policy"
	"github.com/mikepea/orgblog/pkg/orgblog/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	stanford models.Organization
	mit      models.Organization
	cs       models.Department
	math     models.Department
	mitCS    models.Department
}

func setup(t *testing.T) *fixture {
	db := testutil.SetupTestDB(t)
	f := &fixture{db: db, svc: NewService(db)}
	f.stanford = testutil.CreateOrg(t, db, "Stanford University")
	f.mit = testutil.CreateOrg(t, db, "MIT")
	f.cs = testutil.CreateDept(t, db, f.stanford, "Computer Science")
	f.math = testutil.CreateDept(t, db, f.stanford, "Mathematics")
	f.mitCS = testutil.CreateDept(t, db, f.mit, "Computer Science")
	return f
}

func (f *fixture) principal(t *testing.T, u models.User) *policy.Principal {
	var fresh models.User
	require.NoError(t, f.db.First(&fresh, u.ID).Error)
	return policy.FromUser(&fresh)
}

func idPtr(v uint) *uint { return &v }

func TestRequestByNames(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)

	v, err := f.svc.RequestVerification(context.Background(), f.principal(t, user), Request{
		OrgName:  "stanford university",
		DeptName: "COMPUTER SCIENCE",
		Message:  "PhD student",
	})
	require.NoError(t, err)

	assert.Equal(t, models.VerificationPending, v.Status)
	assert.Equal(t, f.stanford.ID, v.OrgID)
	assert.Equal(t, f.cs.ID, v.DeptID)
	assert.False(t, v.RequestedAt.IsZero())
}

func TestRequestDeptNameInfersOrg(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)

	v, err := f.svc.RequestVerification(context.Background(), f.principal(t, user), Request{DeptName: "mathematics"})
	require.NoError(t, err)
	assert.Equal(t, f.stanford.ID, v.OrgID)
	assert.Equal(t, f.math.ID, v.DeptID)
}

func TestRequestAmbiguousDeptName(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)

	_, err := f.svc.RequestVerification(context.Background(), f.principal(t, user), Request{DeptName: "Computer Science"})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestRequestOrgIDBeatsName(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)

	v, err := f.svc.RequestVerification(context.Background(), f.principal(t, user), Request{
		OrgID:    idPtr(f.mit.ID),
		OrgName:  "Stanford University",
		DeptName: "Computer Science",
	})
	require.NoError(t, err)
	assert.Equal(t, f.mit.ID, v.OrgID)
	assert.Equal(t, f.mitCS.ID, v.DeptID)
}

func TestRequestOrgConstrainsDeptLookup(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)

	_, err := f.svc.RequestVerification(context.Background(), f.principal(t, user), Request{
		OrgName:  "MIT",
		DeptName: "Mathematics",
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestRequestResolutionFailures(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	p := f.principal(t, user)
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
		kind apperr.Kind
	}{
		{"nothing given", Request{}, apperr.KindValidation},
		{"org only", Request{OrgName: "MIT"}, apperr.KindValidation},
		{"unknown org name", Request{OrgName: "Hogwarts", DeptName: "Potions"}, apperr.KindNotFound},
		{"unknown org id", Request{OrgID: idPtr(999), DeptID: idPtr(f.cs.ID)}, apperr.KindNotFound},
		{"unknown dept name", Request{OrgName: "MIT", DeptName: "Potions"}, apperr.KindNotFound},
		{"unknown dept id", Request{OrgID: idPtr(f.mit.ID), DeptID: idPtr(999)}, apperr.KindNotFound},
		{"dept of another org", Request{OrgID: idPtr(f.mit.ID), DeptID: idPtr(f.cs.ID)}, apperr.KindConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RequestVerification(ctx, p, tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}
}

func TestRequestRequiresPrincipal(t *testing.T) {
	f := setup(t)
	_, err := f.svc.RequestVerification(context.Background(), nil, Request{OrgName: "MIT", DeptName: "Computer Science"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestRequestWhenAlreadyVerified(t *testing.T) {
	f := setup(t)
	member := testutil.CreateMember(t, f.db, "m@x.com", models.RoleVerified, f.cs)

	_, err := f.svc.RequestVerification(context.Background(), f.principal(t, member), Request{
		OrgID: idPtr(f.mit.ID), DeptID: idPtr(f.mitCS.ID),
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
}

func TestRequestDuplicatePending(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	p := f.principal(t, user)
	req := Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)}

	_, err := f.svc.RequestVerification(context.Background(), p, req)
	require.NoError(t, err)

	_, err = f.svc.RequestVerification(context.Background(), p, req)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	// A different department is a different triple
	_, err = f.svc.RequestVerification(context.Background(), p, Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.math.ID)})
	assert.NoError(t, err)
}

func TestConcurrentIdenticalRequests(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	p := f.principal(t, user)
	req := Request{OrgName: "Stanford University", DeptName: "Computer Science"}

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RequestVerification(context.Background(), p, req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)

	var pending int64
	f.db.Model(&models.Verification{}).
		Where("user_id = ? AND org_id = ? AND dept_id = ? AND status = ?", user.ID, f.stanford.ID, f.cs.ID, models.VerificationPending).
		Count(&pending)
	assert.Equal(t, int64(1), pending)
}

func TestApprovePromotesUser(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	orgAdmin := testutil.CreateMember(t, f.db, "admin@stanford.edu", models.RoleOrgAdmin, f.math)
	ctx := context.Background()

	v, err := f.svc.RequestVerification(ctx, f.principal(t, user), Request{OrgName: "Stanford University", DeptName: "Computer Science"})
	require.NoError(t, err)

	reviewed, err := f.svc.Review(ctx, f.principal(t, orgAdmin), v.ID, Approve, "welcome")
	require.NoError(t, err)

	assert.Equal(t, models.VerificationApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, orgAdmin.ID, *reviewed.ReviewedBy)
	assert.Equal(t, "welcome", reviewed.ReviewNote)
	assert.NotNil(t, reviewed.ReviewedAt)

	var promoted models.User
	require.NoError(t, f.db.First(&promoted, user.ID).Error)
	assert.True(t, promoted.Verified)
	assert.Equal(t, models.RoleVerified, promoted.Role)
	require.NotNil(t, promoted.OrgID)
	require.NotNil(t, promoted.DeptID)
	assert.Equal(t, f.stanford.ID, *promoted.OrgID)
	assert.Equal(t, f.cs.ID, *promoted.DeptID)
}

func TestSecondReviewConflictsAndDoesNotMutateUser(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	super := testutil.CreateUser(t, f.db, "root@x.com", models.RoleSuperAdmin)
	ctx := context.Background()

	v, err := f.svc.RequestVerification(ctx, f.principal(t, user), Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)})
	require.NoError(t, err)

	_, err = f.svc.Review(ctx, f.principal(t, super), v.ID, Approve, "")
	require.NoError(t, err)

	var before models.User
	require.NoError(t, f.db.First(&before, user.ID).Error)

	for _, d := range []Decision{Approve, Reject} {
		_, err = f.svc.Review(ctx, f.principal(t, super), v.ID, d, "again")
		assert.True(t, apperr.Is(err, apperr.KindConflict), "decision %s: got %v", d, err)
	}

	var after models.User
	require.NoError(t, f.db.First(&after, user.ID).Error)
	assert.Equal(t, before.Role, after.Role)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)

	var stored models.Verification
	require.NoError(t, f.db.First(&stored, v.ID).Error)
	assert.Equal(t, models.VerificationApproved, stored.Status)
	assert.Empty(t, stored.ReviewNote)
}

func TestRejectLeavesUserUnchanged(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	deptAdmin := testutil.CreateMember(t, f.db, "da@x.com", models.RoleDeptAdmin, f.cs)
	ctx := context.Background()

	v, err := f.svc.RequestVerification(ctx, f.principal(t, user), Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)})
	require.NoError(t, err)

	reviewed, err := f.svc.Review(ctx, f.principal(t, deptAdmin), v.ID, Reject, "unknown student")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, reviewed.Status)

	var stored models.User
	require.NoError(t, f.db.First(&stored, user.ID).Error)
	assert.False(t, stored.Verified)
	assert.Equal(t, models.RoleGlobal, stored.Role)
	assert.Nil(t, stored.OrgID)

	// Rejection frees the triple for a new request
	_, err = f.svc.RequestVerification(ctx, f.principal(t, user), Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)})
	assert.NoError(t, err)
}

func TestReviewJurisdiction(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	mitAdmin := testutil.CreateMember(t, f.db, "admin@mit.edu", models.RoleOrgAdmin, f.mitCS)
	mathAdmin := testutil.CreateMember(t, f.db, "math@stanford.edu", models.RoleDeptAdmin, f.math)
	member := testutil.CreateMember(t, f.db, "m@stanford.edu", models.RoleVerified, f.cs)
	ctx := context.Background()

	v, err := f.svc.RequestVerification(ctx, f.principal(t, user), Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)})
	require.NoError(t, err)

	for _, reviewer := range []models.User{mitAdmin, mathAdmin, member} {
		_, err := f.svc.Review(ctx, f.principal(t, reviewer), v.ID, Approve, "")
		assert.True(t, apperr.Is(err, apperr.KindForbidden), "%s: got %v", reviewer.Email, err)
	}

	_, err = f.svc.Review(ctx, nil, v.ID, Approve, "")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = f.svc.Review(ctx, f.principal(t, mitAdmin), 999, Approve, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestApproveSupersedesOtherPendingRequests(t *testing.T) {
	f := setup(t)
	user := testutil.CreateUser(t, f.db, "a@x.com", models.RoleGlobal)
	super := testutil.CreateUser(t, f.db, "root@x.com", models.RoleSuperAdmin)
	ctx := context.Background()
	p := f.principal(t, user)

	first, err := f.svc.RequestVerification(ctx, p, Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)})
	require.NoError(t, err)
	second, err := f.svc.RequestVerification(ctx, p, Request{OrgID: idPtr(f.mit.ID), DeptID: idPtr(f.mitCS.ID)})
	require.NoError(t, err)

	_, err = f.svc.Review(ctx, f.principal(t, super), first.ID, Approve, "")
	require.NoError(t, err)

	var other models.Verification
	require.NoError(t, f.db.First(&other, second.ID).Error)
	assert.Equal(t, models.VerificationRejected, other.Status)
	assert.Equal(t, SupersededNote, other.ReviewNote)

	_, err = f.svc.Review(ctx, f.principal(t, super), second.ID, Approve, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestApproveKeepsHigherRole(t *testing.T) {
	f := setup(t)
	super := testutil.CreateUser(t, f.db, "root@x.com", models.RoleSuperAdmin)
	other := testutil.CreateUser(t, f.db, "root2@x.com", models.RoleSuperAdmin)
	ctx := context.Background()

	v, err := f.svc.RequestVerification(ctx, f.principal(t, super), Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)})
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, f.principal(t, other), v.ID, Approve, "")
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, f.db.First(&stored, super.ID).Error)
	assert.Equal(t, models.RoleSuperAdmin, stored.Role)
	assert.True(t, stored.Verified)
}

func TestListReviewableScopesByJurisdiction(t *testing.T) {
	f := setup(t)
	alice := testutil.CreateUser(t, f.db, "alice@x.com", models.RoleGlobal)
	bob := testutil.CreateUser(t, f.db, "bob@x.com", models.RoleGlobal)
	csAdmin := testutil.CreateMember(t, f.db, "cs@stanford.edu", models.RoleDeptAdmin, f.cs)
	stanfordAdmin := testutil.CreateMember(t, f.db, "admin@stanford.edu", models.RoleOrgAdmin, f.cs)
	super := testutil.CreateUser(t, f.db, "root@x.com", models.RoleSuperAdmin)
	ctx := context.Background()

	_, err := f.svc.RequestVerification(ctx, f.principal(t, alice), Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.cs.ID)})
	require.NoError(t, err)
	_, err = f.svc.RequestVerification(ctx, f.principal(t, bob), Request{OrgID: idPtr(f.stanford.ID), DeptID: idPtr(f.math.ID)})
	require.NoError(t, err)
	_, err = f.svc.RequestVerification(ctx, f.principal(t, bob), Request{OrgID: idPtr(f.mit.ID), DeptID: idPtr(f.mitCS.ID)})
	require.NoError(t, err)

	list, err := f.svc.ListReviewable(ctx, f.principal(t, csAdmin), models.VerificationPending)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, alice.ID, list[0].UserID)
	assert.Equal(t, "alice@x.com", list[0].User.Email)

	list, err = f.svc.ListReviewable(ctx, f.principal(t, stanfordAdmin), "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.svc.ListReviewable(ctx, f.principal(t, super), "")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = f.svc.ListReviewable(ctx, f.principal(t, alice), "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	own, err := f.svc.ListOwn(ctx, f.principal(t, bob))
	require.NoError(t, err)
	assert.Len(t, own, 2)
}
