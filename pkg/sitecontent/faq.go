package sitecontent

// QuestionField names the part of a question Update replaces.
type QuestionField string

// QuestionField constants (typed).
const (
	FieldQuestion QuestionField = "question"
	FieldAnswer   QuestionField = "answer"
)

func setQuestionOrder(q *Question, i int) { q.Order = i }

func cloneQuestions(q Questions) Questions {
	if q == nil {
		return nil
	}
	return append(make(Questions, 0, len(q)), q...)
}

// Add appends an empty question.
func (q Questions) Add() Questions {
	return appendOrdered(q, Question{}, cloneQuestions, setQuestionOrder)
}

// Update replaces the question or answer text of entry index.
func (q Questions) Update(index int, f QuestionField, value string) (Questions, error) {
	if err := checkIndex("update question", index, len(q)); err != nil {
		return nil, err
	}
	out := cloneQuestions(q)
	switch f {
	case FieldQuestion:
		out[index].Question = value
	case FieldAnswer:
		out[index].Answer = value
	default:
		return nil, invariant("update question", "unknown field %q", f)
	}
	return out, nil
}

// Remove deletes entry index and renumbers the entries after it.
func (q Questions) Remove(index int) (Questions, error) {
	return removeOrdered("remove question", q, index, cloneQuestions, setQuestionOrder)
}

// Move swaps entry index with its neighbour in direction dir.
func (q Questions) Move(index int, dir Direction) (Questions, error) {
	return moveOrdered("move question", q, index, dir, cloneQuestions, setQuestionOrder)
}
