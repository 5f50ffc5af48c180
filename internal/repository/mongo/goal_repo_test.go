package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLinkSessionMutation_FilterGuardsAgainstDuplicates(t *testing.T) {
	goalID := primitive.NewObjectID()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	filter, update := linkSessionMutation(goalID, "session-1", now)

	// The duplicate guard lives in the filter: a goal already carrying
	// the session id must not match, otherwise the updatedAt $set alone
	// would count as a modification and a duplicate submission would
	// report as newly linked.
	assert.Equal(t, goalID, filter["_id"])
	guard, ok := filter["linkedSessions"].(bson.M)
	require.True(t, ok, "linkedSessions guard missing from filter")
	assert.Equal(t, "session-1", guard["$ne"])

	addToSet, ok := update["$addToSet"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "session-1", addToSet["linkedSessions"])

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, now, set["updatedAt"])
}
