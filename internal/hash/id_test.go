package hash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestSum64MatchesID(t *testing.T) {
	for _, s := range []string{"", "1-1", "6-6", "3-4.E", "REGAUSS"} {
		require.Equal(t, ID(s), Sum64([]byte(s)))
	}
}

func TestHex(t *testing.T) {
	// 16 lowercase hex chars, stable across calls
	h := Hex([]byte("KSB"))
	require.Len(t, h, 16)
	require.Equal(t, h, Hex([]byte("KSB")))
	require.NotEqual(t, h, Hex([]byte("REGAUSS")))

	// Big-endian rendering of the sum
	require.Equal(t, "ef46db3751d8e999", Hex(nil))
}

func randString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range b {
		b[i] = letters[seededRand.Intn(len(letters))]
	}

	return string(b)
}

func BenchmarkID(b *testing.B) {
	randStr := randString(20)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ID(randStr)
	}
}
