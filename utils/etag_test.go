package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateETagDeterministic(t *testing.T) {
	id := primitive.NewObjectID()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := GenerateETag(id, at)
	require.Equal(t, first, GenerateETag(id, at))
	require.Equal(t, first, GenerateETag(id, at.In(time.FixedZone("EAT", 3*60*60))))

	require.NotEqual(t, first, GenerateETag(id, at.Add(time.Second)))
	require.NotEqual(t, first, GenerateETag(primitive.NewObjectID(), at))
}
