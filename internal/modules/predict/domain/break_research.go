package domain

// ResearchEntry is one built-in productivity study summary. The set is
// baked in so guidance works offline; all of it is non-medical.
type ResearchEntry struct {
	Title           string
	Summary         string
	OptimalWorkMin  float64
	OptimalBreakMin float64
	Citation        string
	URL             string
}

var ResearchEntries = []ResearchEntry{
	{
		Title: "Pomodoro Technique",
		Summary: "Work in 25-minute focused sprints, then take a 5-minute break. " +
			"After 4 sprints, take a longer 15-30 minute break.",
		OptimalWorkMin:  25,
		OptimalBreakMin: 5,
		Citation:        "Cirillo, F. (2006). The Pomodoro Technique.",
		URL:             "https://francescocirillo.com/products/the-pomodoro-technique",
	},
	{
		Title: "DeskTime 52/17 Rule",
		Summary: "The most productive employees in a large time-tracking dataset worked " +
			"for 52 minutes and then took 17-minute breaks, fully stepping away.",
		OptimalWorkMin:  52,
		OptimalBreakMin: 17,
		Citation:        "Gifford, J. (2014). DeskTime Productivity Study.",
		URL:             "https://desktime.com/blog/17-52-ratio-most-productive-people",
	},
	{
		Title: "Ultradian Rhythms",
		Summary: "The body cycles through roughly 90-minute periods of higher and lower " +
			"alertness; 90 minutes of work followed by 20 minutes of rest tracks them.",
		OptimalWorkMin:  90,
		OptimalBreakMin: 20,
		Citation:        "Kleitman, N. (1963). Sleep and Wakefulness.",
		URL:             "https://en.wikipedia.org/wiki/Basic_rest%E2%80%93activity_cycle",
	},
	{
		Title: "Attention Restoration Theory",
		Summary: "Micro-breaks of 5-10 minutes with exposure to natural environments " +
			"restore directed attention.",
		OptimalBreakMin: 10,
		Citation:        "Kaplan, S. (1995). The restorative benefits of nature.",
		URL:             "https://doi.org/10.1016/0272-4944(95)90001-2",
	},
	{
		Title: "Cognitive Fatigue & Recovery",
		Summary: "Performance on intense cognitive work declines after about 20 minutes; " +
			"even brief diversions improve focus on prolonged tasks.",
		OptimalWorkMin:  20,
		OptimalBreakMin: 5,
		Citation:        "Ariga, A. & Lleras, A. (2011). Brief diversions improve focus.",
		URL:             "https://doi.org/10.1016/j.cognition.2010.12.007",
	},
}

// ResearchBreakLength maps an uninterrupted work stretch to the break
// length the studies above recommend for it.
func ResearchBreakLength(workMin float64) float64 {
	switch {
	case workMin < 25:
		return 5
	case workMin < 55:
		return 10
	case workMin < 95:
		return 17
	default:
		return 20
	}
}

// BreakAdvice comments on a finished break of the given length.
func BreakAdvice(breakMin float64) string {
	switch {
	case breakMin < 3:
		return "That was a very short break. Research suggests at least 5 minutes to restore attention."
	case breakMin < 8:
		return "Good micro-break. Around 5 minutes is a solid range for attention restoration."
	case breakMin <= 20:
		return "Nice break length. The 15-20 minute range supports deep recovery."
	case breakMin <= 35:
		return "Extended break. Great after several focused sprints, and about the upper end for keeping momentum."
	default:
		return "Your break ran past 35 minutes. Re-engaging gets harder after very long breaks."
	}
}
