// If you are AI: Covers the set/meet/erase round trip named in the
// design's testable properties: a registered peer is discoverable by
// Meet, and disappears once erased.

package rendezvous

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftcast/internal/socket"
)

func addr(port uint16) socket.Address {
	return socket.NewAddress(netip.MustParseAddr("127.0.0.1"), port)
}

func TestSetMeetErase(t *testing.T) {
	d := NewDirectory(nil)

	bAddr := addr(2000)
	bServer := addr(2001)
	redirects := []socket.Address{addr(2002)}
	opaque := []byte("b-opaque")

	d.Set("peer-b", bAddr, bServer, redirects, opaque)

	aAddr := addr(1000)
	gotOpaque, gotAddr, gotAddrs, found := d.Meet(aAddr, "peer-b", []socket.Address{aAddr})
	require.True(t, found)
	assert.True(t, gotAddr.Equal(bAddr))
	assert.Equal(t, "b-opaque", string(gotOpaque))
	require.Len(t, gotAddrs, 2)
	assert.True(t, gotAddrs[0].Equal(bServer))
	assert.True(t, gotAddrs[1].Equal(redirects[0]))

	d.Erase("peer-b")
	_, _, _, found = d.Meet(aAddr, "peer-b", nil)
	assert.False(t, found, "expected peer-b to be gone after Erase")
}

func TestMeetNotFound(t *testing.T) {
	d := NewDirectory(nil)
	_, _, _, found := d.Meet(addr(1000), "nobody", nil)
	assert.False(t, found)
}

func TestSetReplacesPriorRecord(t *testing.T) {
	d := NewDirectory(nil)

	d.Set("peer-b", addr(2000), addr(2001), nil, []byte("first"))
	d.Set("peer-b", addr(3000), addr(3001), nil, []byte("second"))

	opaque, bAddr, _, found := d.Meet(addr(1000), "peer-b", nil)
	require.True(t, found)
	assert.Equal(t, "second", string(opaque), "expected latest Set to win")
	assert.True(t, bAddr.Equal(addr(3000)), "expected latest address to win")
}

func TestListReflectsSetAndErase(t *testing.T) {
	d := NewDirectory(nil)
	d.Set("peer-a", addr(1000), addr(1001), nil, nil)
	d.Set("peer-b", addr(2000), addr(2001), nil, nil)

	ids := d.List()
	assert.Len(t, ids, 2)

	d.Erase("peer-a")
	ids = d.List()
	assert.Equal(t, []string{"peer-b"}, ids)
}
