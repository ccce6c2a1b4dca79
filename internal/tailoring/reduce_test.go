package tailoring

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/resume-tailor/internal/optimizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_Success(t *testing.T) {
	reduced := baseResume()
	reduced.Experience[0].Bullets = []string{"Cut latency 40%"}
	client := &stubClient{response: resumeJSON(t, reduced)}

	r := NewReducer(client)
	input := baseResume()
	result, err := r.Reduce(context.Background(), input, 2, 1)
	require.NoError(t, err)
	assert.Len(t, result.Experience[0].Bullets, 1)

	// Input document must be untouched
	assert.Len(t, input.Experience[0].Bullets, 2)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "currently 2 pages")
	assert.Contains(t, client.prompts[0], "fit on 1 page(s)")
}

func TestReduce_LLMFailure(t *testing.T) {
	clientErr := errors.New("deadline exceeded")
	client := &stubClient{err: clientErr}

	r := NewReducer(client)
	_, err := r.Reduce(context.Background(), baseResume(), 2, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, clientErr)
}

func TestReduce_InvalidResponseIsError(t *testing.T) {
	// An invalid document must surface as an error, never as a result
	invalid := baseResume()
	invalid.Skills = map[string][]string{}
	client := &stubClient{response: resumeJSON(t, invalid)}

	r := NewReducer(client)
	_, err := r.Reduce(context.Background(), baseResume(), 3, 1)
	require.Error(t, err)
	var tErr *Error
	assert.ErrorAs(t, err, &tErr)
}

func TestReduce_PreservesContactBlock(t *testing.T) {
	tampered := baseResume()
	tampered.Contact.Phone = "000-000-0000"
	client := &stubClient{response: resumeJSON(t, tampered)}

	r := NewReducer(client)
	original := baseResume()
	result, err := r.Reduce(context.Background(), original, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, original.Contact, result.Contact)
}

// Reducer must satisfy the optimizer's reduction contract.
var _ optimizer.ContentReducer = (*Reducer)(nil)
