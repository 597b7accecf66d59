package party_test

import (
	"testing"

	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/stretchr/testify/require"
)

var dir = party.Directory{PrimaryID: "p-1", PartnerID: "p-2"}

func TestResolve(t *testing.T) {
	id, err := party.Resolve(party.RolePrimary, dir)
	require.NoError(t, err)
	require.Equal(t, "p-1", id.MyID)
	require.Equal(t, "p-2", id.PartnerID)
	require.True(t, id.IsMine("p-1"))

	id, err = party.Resolve(party.RolePartner, dir)
	require.NoError(t, err)
	require.Equal(t, "p-2", id.MyID)
	require.Equal(t, "p-1", id.PartnerID)
}

func TestResolve_Invalid(t *testing.T) {
	_, err := party.Resolve("GUEST", dir)
	require.ErrorIs(t, err, party.ErrInvalidRole)

	_, err = party.Resolve(party.RolePrimary, party.Directory{PrimaryID: "same", PartnerID: "same"})
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := party.ParseRole(" partner ")
	require.NoError(t, err)
	require.Equal(t, party.RolePartner, r)
	require.Equal(t, party.RolePrimary, r.Counterpart())

	_, err = party.ParseRole("")
	require.ErrorIs(t, err, party.ErrInvalidRole)
}
