package worldflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCompletionRule_DefaultRule(t *testing.T) {
	done, err := evalCompletionRule("", completionEnv{
		AllCompletedExceptPosts: true,
		PostsCreated:            0,
		PostsPredicted:          10,
	})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestEvalCompletionRule_DefaultRule_PostsReachedPredicted(t *testing.T) {
	done, err := evalCompletionRule("", completionEnv{
		AllCompletedExceptPosts: false,
		PostsCreated:            10,
		PostsPredicted:          10,
	})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestEvalCompletionRule_DefaultRule_StillRunning(t *testing.T) {
	done, err := evalCompletionRule("", completionEnv{
		AllCompletedExceptPosts: false,
		PostsCreated:            3,
		PostsPredicted:          10,
	})
	require.NoError(t, err)
	assert.False(t, done)
}

func TestEvalCompletionRule_CustomRule(t *testing.T) {
	done, err := evalCompletionRule("PostsCreated >= 5", completionEnv{
		PostsCreated:   5,
		PostsPredicted: 100,
	})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestEvalCompletionRule_InvalidExpression(t *testing.T) {
	_, err := evalCompletionRule("PostsCreated +", completionEnv{})
	assert.Error(t, err)
}
