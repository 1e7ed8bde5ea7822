// services/catalogue.go - Achievement definitions
package services

// Input is a bitmask of the aggregates an achievement predicate reads.
type Input uint16

const (
	InputGrammarAsked Input = 1 << iota
	InputVocabularyAsked
	InputGrammarTotal
	InputVocabularyTotal
	InputVocabularyToday
	InputStreak
	InputPerfectDays
	InputQuizCount
	InputPerfectGeneral
	// InputAchievements is the unlock state of the other titles.
	InputAchievements

	InputAll Input = 1<<iota - 1
)

// Capstone is the title unlocked by completing everything else.
const Capstone = "YOU ARE READY"

// Definition is one catalogue entry.
type Definition struct {
	Title       string
	Description string
	Icon        string
	Inputs      Input
	Met         func(s *Snapshot) (bool, error)
}

func atLeast(read func(*Snapshot) (int64, error), n int64) func(*Snapshot) (bool, error) {
	return func(s *Snapshot) (bool, error) {
		v, err := read(s)
		if err != nil {
			return false, err
		}
		return v >= n, nil
	}
}

// Catalogue is the fixed list of achievements, capstone last.
var Catalogue = []Definition{
	{
		Title:       "Grammar Junior",
		Description: "Answer 30 grammar rules correctly in quizzes",
		Icon:        "ri-book-open-line",
		Inputs:      InputGrammarAsked,
		Met:         atLeast((*Snapshot).GrammarAsked, 30),
	},
	{
		Title:       "Grammar Master",
		Description: "Answer 70 grammar rules correctly in quizzes",
		Icon:        "ri-book-3-line",
		Inputs:      InputGrammarAsked,
		Met:         atLeast((*Snapshot).GrammarAsked, 70),
	},
	{
		Title:       "Vocabulary Junior",
		Description: "Answer 70 words correctly in quizzes",
		Icon:        "ri-translate",
		Inputs:      InputVocabularyAsked,
		Met:         atLeast((*Snapshot).VocabularyAsked, 70),
	},
	{
		Title:       "Vocabulary Master",
		Description: "Answer 150 words correctly in quizzes",
		Icon:        "ri-translate-2",
		Inputs:      InputVocabularyAsked,
		Met:         atLeast((*Snapshot).VocabularyAsked, 150),
	},
	{
		Title:       "Consistent Learner",
		Description: "Keep a 15 day study streak",
		Icon:        "ri-calendar-check-line",
		Inputs:      InputStreak,
		Met:         atLeast((*Snapshot).Streak, 15),
	},
	{
		Title:       "Dedication",
		Description: "Keep a 30 day study streak",
		Icon:        "ri-medal-line",
		Inputs:      InputStreak,
		Met:         atLeast((*Snapshot).Streak, 30),
	},
	{
		Title:       "Grammar Builder",
		Description: "Add 80 grammar rules",
		Icon:        "ri-stack-line",
		Inputs:      InputGrammarTotal,
		Met:         atLeast((*Snapshot).GrammarTotal, 80),
	},
	{
		Title:       "Vocabulary Builder",
		Description: "Add 300 words",
		Icon:        "ri-database-2-line",
		Inputs:      InputVocabularyTotal,
		Met:         atLeast((*Snapshot).VocabularyTotal, 300),
	},
	{
		Title:       "Fast Learner",
		Description: "Complete every daily challenge on 7 days",
		Icon:        "ri-flashlight-line",
		Inputs:      InputPerfectDays,
		Met:         atLeast((*Snapshot).PerfectDays, 7),
	},
	{
		Title:       "On Fire",
		Description: "Add 50 words in a single day",
		Icon:        "ri-fire-line",
		Inputs:      InputVocabularyToday,
		Met:         atLeast((*Snapshot).VocabularyToday, 50),
	},
	{
		Title:       "Quiz Junior",
		Description: "Finish 50 quizzes",
		Icon:        "ri-questionnaire-line",
		Inputs:      InputQuizCount,
		Met:         atLeast((*Snapshot).QuizCount, 50),
	},
	{
		Title:       "Quiz Master",
		Description: "Finish 100 quizzes",
		Icon:        "ri-award-line",
		Inputs:      InputQuizCount,
		Met:         atLeast((*Snapshot).QuizCount, 100),
	},
	{
		Title:       "Impossible",
		Description: "Answer all 100 questions of a general vocabulary quiz correctly",
		Icon:        "ri-star-line",
		Inputs:      InputPerfectGeneral,
		Met:         atLeast((*Snapshot).PerfectGeneralQuizzes, 1),
	},
	{
		Title:       Capstone,
		Description: "Unlock every other achievement and get every saved item right",
		Icon:        "ri-vip-crown-line",
		Inputs:      InputAchievements | InputGrammarAsked | InputVocabularyAsked | InputGrammarTotal | InputVocabularyTotal,
		Met:         capstoneMet,
	},
}

// capstonePrerequisites lists every title except the capstone.
var capstonePrerequisites []string

func init() {
	for _, def := range Catalogue {
		if def.Title != Capstone {
			capstonePrerequisites = append(capstonePrerequisites, def.Title)
		}
	}
}

// capstoneMet requires every other title unlocked and both content sets
// non-empty and fully asked.
func capstoneMet(s *Snapshot) (bool, error) {
	unlocked, err := s.UnlockedTitles()
	if err != nil {
		return false, err
	}
	for _, title := range capstonePrerequisites {
		if !unlocked[title] {
			return false, nil
		}
	}

	for _, pair := range [][2]func(*Snapshot) (int64, error){
		{(*Snapshot).GrammarAsked, (*Snapshot).GrammarTotal},
		{(*Snapshot).VocabularyAsked, (*Snapshot).VocabularyTotal},
	} {
		asked, err := pair[0](s)
		if err != nil {
			return false, err
		}
		total, err := pair[1](s)
		if err != nil {
			return false, err
		}
		if total == 0 || asked != total {
			return false, nil
		}
	}
	return true, nil
}

// Lookup returns the definition for title.
func Lookup(title string) (Definition, bool) {
	for _, def := range Catalogue {
		if def.Title == title {
			return def, true
		}
	}
	return Definition{}, false
}
