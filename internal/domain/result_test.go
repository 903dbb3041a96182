package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_MatchCallsExactlyOneHandler(t *testing.T) {
	cases := []struct {
		name string
		r    Result[int]
		want string
	}{
		{"zero value", Result[int]{}, "loading"},
		{"loading", Loading[int](), "loading"},
		{"success", Success(42), "success"},
		{"failure", Failure[int](errors.New("boom")), "failure"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			tc.r.Match(
				func() { got = append(got, "loading") },
				func(int) { got = append(got, "success") },
				func(error) { got = append(got, "failure") },
			)
			assert.Equal(t, []string{tc.want}, got)
			assert.Equal(t, tc.want, tc.r.State().String())
		})
	}
}

func TestResult_GetAndErr(t *testing.T) {
	v, ok := Success("x").Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	boom := errors.New("boom")
	f := Failure[string](boom)
	_, ok = f.Get()
	assert.False(t, ok)
	assert.ErrorIs(t, f.Err(), boom)

	assert.NoError(t, Loading[string]().Err())
}

func TestFailure_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { Failure[int](nil) })
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Collector")
	assert.NoError(t, err)
	assert.Equal(t, RoleCollector, r)
	assert.True(t, r.CanComment())

	r, err = ParseRole("")
	assert.NoError(t, err)
	assert.Equal(t, RoleVisitor, r)
	assert.False(t, r.CanComment())

	_, err = ParseRole("admin")
	assert.Error(t, err)
}

func TestRemoteError(t *testing.T) {
	err := &RemoteError{Op: "GET /albums", Status: 503, Message: "unavailable", Cause: ErrServerOffline}
	assert.Equal(t, "GET /albums: 503 unavailable", err.Error())
	assert.ErrorIs(t, err, ErrServerOffline)
	assert.True(t, IsRemote(err))
	assert.False(t, IsRemote(ErrStoreClosed))
}

func TestEnrichedCollectorAlbum_IsPlaceholder(t *testing.T) {
	p := EnrichedCollectorAlbum{AlbumID: 7, Name: PlaceholderAlbumName(7), Price: 10}
	assert.True(t, p.IsPlaceholder())
	assert.Equal(t, "Album #7", p.Name)

	real := EnrichedCollectorAlbum{AlbumID: 7, Name: "Buscando América", Cover: "http://x/c.jpg"}
	assert.False(t, real.IsPlaceholder())
}
