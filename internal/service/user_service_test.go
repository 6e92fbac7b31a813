package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"alcyxob/coaching-api/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jane := env.addUser(t, "jane", domain.RoleCoach, nil)
	env.addUser(t, "john", domain.RoleCoach, nil)

	updated, err := env.userSvc.UpdateProfile(ctx, jane.ID, " Jane D ", "Jane.D@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane D", updated.FullName)
	assert.Equal(t, "jane.d@example.com", updated.Email)

	_, err = env.userSvc.UpdateProfile(ctx, jane.ID, "Jane", "john@example.com")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = env.userSvc.UpdateProfile(ctx, jane.ID, "", "x@example.com")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProfilePicture(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jane := env.addUser(t, "jane", domain.RoleAthlete, nil)

	pic := func(name, ct string, size int) MediaFile {
		return MediaFile{FileName: name, ContentType: ct, Size: int64(size), Body: bytes.NewReader(make([]byte, size))}
	}

	_, err := env.userSvc.UpdateProfilePicture(ctx, jane.ID, pic("clip.mp4", "video/mp4", 10))
	assert.ErrorIs(t, err, ErrUnsupportedPicture)
	_, err = env.userSvc.UpdateProfilePicture(ctx, jane.ID, pic("big.png", "image/png", MaxProfilePictureSize+1))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, 0, env.files.Len())

	first, err := env.userSvc.UpdateProfilePicture(ctx, jane.ID, pic("me.png", "image/png", 10))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ProfilePictureKey, "profile/"+jane.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(first.ProfilePictureKey, ".png"))
	assert.Contains(t, env.userSvc.ProfilePictureURL(ctx, first), first.ProfilePictureKey)

	second, err := env.userSvc.UpdateProfilePicture(ctx, jane.ID, pic("me.jpg", "", 10))
	require.NoError(t, err)
	assert.Equal(t, 1, env.files.Len(), "previous picture is removed")
	_, ok := env.files.Object(first.ProfilePictureKey)
	assert.False(t, ok)

	stored, _ := env.users.GetByID(ctx, jane.ID)
	assert.Equal(t, second.ProfilePictureKey, stored.ProfilePictureKey)
	assert.Len(t, env.uploads.All(), 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CounterMediaUploads.WithLabelValues(string(domain.UploadProfilePicture))))
}

func TestCoachAthleteLinking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach := env.addUser(t, "coach", domain.RoleCoach, nil)
	rival := env.addUser(t, "rival", domain.RoleCoach, nil)
	athlete := env.addUser(t, "athlete", domain.RoleAthlete, nil)

	_, err := env.userSvc.GetMyCoach(ctx, athlete.ID)
	assert.ErrorIs(t, err, ErrNoCoach)

	found, err := env.userSvc.SearchAthleteByEmail(ctx, "ATHLETE@example.com")
	require.NoError(t, err)
	assert.Equal(t, athlete.ID, found.ID)
	_, err = env.userSvc.SearchAthleteByEmail(ctx, "rival@example.com")
	assert.ErrorIs(t, err, ErrNotAthlete)
	_, err = env.userSvc.SearchAthleteByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	linked, err := env.userSvc.LinkCoach(ctx, coach.ID, athlete.ID)
	require.NoError(t, err)
	assert.True(t, linked.HasCoach(coach.ID))

	_, err = env.userSvc.LinkCoach(ctx, coach.ID, athlete.ID)
	assert.NoError(t, err, "relinking to the same coach is allowed")
	_, err = env.userSvc.LinkCoach(ctx, rival.ID, athlete.ID)
	assert.ErrorIs(t, err, ErrAthleteHasOtherCoach)
	_, err = env.userSvc.LinkCoach(ctx, coach.ID, rival.ID)
	assert.ErrorIs(t, err, ErrNotAthlete)

	myCoach, err := env.userSvc.GetMyCoach(ctx, athlete.ID)
	require.NoError(t, err)
	assert.Equal(t, coach.ID, myCoach.ID)
	assert.Empty(t, myCoach.PasswordHash)

	athletes, err := env.userSvc.GetAthletes(ctx, Caller{ID: coach.ID, Role: domain.RoleCoach}, coach.ID)
	require.NoError(t, err)
	require.Len(t, athletes, 1)
	_, err = env.userSvc.GetAthletes(ctx, Caller{ID: rival.ID, Role: domain.RoleCoach}, coach.ID)
	assert.ErrorIs(t, err, ErrUserAccessDenied)

	_, err = env.userSvc.GetAthlete(ctx, Caller{ID: coach.ID, Role: domain.RoleCoach}, athlete.ID)
	assert.NoError(t, err)
	_, err = env.userSvc.GetAthlete(ctx, Caller{ID: athlete.ID, Role: domain.RoleAthlete}, athlete.ID)
	assert.NoError(t, err)
	_, err = env.userSvc.GetAthlete(ctx, Caller{ID: rival.ID, Role: domain.RoleCoach}, athlete.ID)
	assert.ErrorIs(t, err, ErrUserAccessDenied)

	_, err = env.userSvc.UnlinkCoach(ctx, rival.ID, athlete.ID)
	assert.ErrorIs(t, err, ErrAthleteNotLinked)
	unlinked, err := env.userSvc.UnlinkCoach(ctx, coach.ID, athlete.ID)
	require.NoError(t, err)
	assert.Nil(t, unlinked.CoachID)

	athletes, err = env.userSvc.GetAthletes(ctx, Caller{ID: coach.ID, Role: domain.RoleCoach}, coach.ID)
	require.NoError(t, err)
	assert.Empty(t, athletes)
	assert.NotNil(t, athletes)
}
