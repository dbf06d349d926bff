package sitecontent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/site-console/pkg/sitecontent"
)

func questions(t *testing.T, qs ...string) sitecontent.Questions {
	t.Helper()
	var q sitecontent.Questions
	for _, text := range qs {
		q = q.Add()
		var err error
		q, err = q.Update(len(q)-1, sitecontent.FieldQuestion, text)
		require.NoError(t, err)
		q, err = q.Update(len(q)-1, sitecontent.FieldAnswer, "answer to "+text)
		require.NoError(t, err)
	}
	return q
}

func questionTexts(q sitecontent.Questions) []string {
	out := make([]string, len(q))
	for i, x := range q {
		out[i] = x.Question
	}
	return out
}

func TestQuestions_Algebra(t *testing.T) {
	q := questions(t, "how", "when", "where")
	for i, x := range q {
		assert.Equal(t, i, x.Order)
	}

	moved, err := q.Move(2, sitecontent.Up)
	require.NoError(t, err)
	assert.Equal(t, []string{"how", "where", "when"}, questionTexts(moved))
	assert.Equal(t, 2, moved[2].Order)

	removed, err := q.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"when", "where"}, questionTexts(removed))
	assert.Equal(t, 0, removed[0].Order)
	assert.Equal(t, 1, removed[1].Order)

	assert.Equal(t, []string{"how", "when", "where"}, questionTexts(q), "input untouched")

	_, err = q.Update(3, sitecontent.FieldAnswer, "x")
	assert.ErrorIs(t, err, sitecontent.ErrIndexOutOfRange)
	_, err = q.Update(0, "hint", "x")
	assert.ErrorIs(t, err, sitecontent.ErrInvariantViolation)
}

func TestValidateFAQ(t *testing.T) {
	q := questions(t, "how")
	require.NoError(t, sitecontent.ValidateFAQ(sitecontent.FAQDocument{CategoryName: "General", Questions: q}))

	q = q.Add()
	err := sitecontent.ValidateFAQ(sitecontent.FAQDocument{Questions: q})
	var verr *sitecontent.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		fields = append(fields, p.Field)
	}
	assert.ElementsMatch(t, []string{"categoryName", "questions[1].question", "questions[1].answer"}, fields)
}
