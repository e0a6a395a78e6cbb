package models

// ExerciseTypeID identifies the player widget an exercise document is written for.
type ExerciseTypeID int

const (
	TypeWordFillBlank          ExerciseTypeID = 1
	TypeSentenceFillBlank      ExerciseTypeID = 2
	TypePictureFillBlank       ExerciseTypeID = 3
	TypeAudioFillBlank         ExerciseTypeID = 4
	TypeParagraphMultiBlank    ExerciseTypeID = 5
	TypeDialogueMultiBlank     ExerciseTypeID = 6
	TypeConjugationTable       ExerciseTypeID = 7
	TypeWordPictureMatch       ExerciseTypeID = 8
	TypeWordTranslationMatch   ExerciseTypeID = 9
	TypeAudioPictureMatch      ExerciseTypeID = 10
	TypeSynonymMatch           ExerciseTypeID = 11
	TypeAntonymMatch           ExerciseTypeID = 12
	TypeQuestionAnswerMatch    ExerciseTypeID = 13
	TypeWordCategorize         ExerciseTypeID = 14
	TypePictureCategorize      ExerciseTypeID = 15
	TypeSoundCategorize        ExerciseTypeID = 16
	TypeGrammarCategorize      ExerciseTypeID = 17
	TypeSentenceOrder          ExerciseTypeID = 18
	TypeSentenceBuilder        ExerciseTypeID = 19
	TypeStoryOrder             ExerciseTypeID = 20
	TypeLetterOrder            ExerciseTypeID = 21
	TypeTrueFalseStatements    ExerciseTypeID = 22
	TypeTrueFalsePicture       ExerciseTypeID = 23
	TypeTrueFalseAudio         ExerciseTypeID = 24
	TypeMultipleChoiceText     ExerciseTypeID = 25
	TypeMultipleChoicePicture  ExerciseTypeID = 26
	TypeMultipleChoiceAudio    ExerciseTypeID = 27
	TypeListenAndChoose        ExerciseTypeID = 28
	TypeOddOneOut              ExerciseTypeID = 29
	TypeMultiSelect            ExerciseTypeID = 30
	TypeDialoguePlayer         ExerciseTypeID = 31
	TypeSongPlayer             ExerciseTypeID = 32
	TypeStoryReader            ExerciseTypeID = 33
	TypeLetterDecomposition    ExerciseTypeID = 34
	TypeSyllableDecomposition  ExerciseTypeID = 35
	TypePronunciationDrill     ExerciseTypeID = 36
	TypeVocabularyFlashcards   ExerciseTypeID = 37
	TypeMemoryPairs            ExerciseTypeID = 38
	TypeMissingLetter          ExerciseTypeID = 39
	TypePictureLabeling        ExerciseTypeID = 40
)

// ExerciseKind is the content shape family shared by several exercise types.
type ExerciseKind string

const (
	KindFillBlank      ExerciseKind = "fill_blank"
	KindMultiBlank     ExerciseKind = "multi_blank"
	KindMatching       ExerciseKind = "matching"
	KindCategorization ExerciseKind = "categorization"
	KindOrdering       ExerciseKind = "ordering"
	KindTrueFalse      ExerciseKind = "true_false"
	KindMultipleChoice ExerciseKind = "multiple_choice"
	KindSequence       ExerciseKind = "sequence"
	KindUnsupported    ExerciseKind = "unsupported"
)

// Interactive reports whether the kind is played through placements rather than a
// timed sequence.
func (k ExerciseKind) Interactive() bool {
	switch k {
	case KindFillBlank, KindMultiBlank, KindMatching, KindCategorization,
		KindOrdering, KindTrueFalse, KindMultipleChoice:
		return true
	default:
		return false
	}
}

// ContentIdentity names one revision of one document. Every interaction state is
// derived from an explicit identity so that switching documents never leaks state.
type ContentIdentity struct {
	Document int    `json:"document"`
	Revision uint64 `json:"revision"`
}

// IsZero reports whether no content has been loaded under this identity.
func (id ContentIdentity) IsZero() bool {
	return id.Document == 0 && id.Revision == 0
}
