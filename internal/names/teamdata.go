package names

// Static team-name tables. These are data, not logic: the normalizer and
// scorer take them as inputs so deployments can override them without
// touching code.

// DefaultMascots are suffix words stripped during normalization. Sources
// disagree on whether a team is "Michigan" or "Michigan Wolverines".
var DefaultMascots = []string{
	"aggies", "badgers", "bears", "bearcats", "blue", "devils", "boilermakers",
	"broncos", "bruins", "buckeyes", "bulldogs", "cardinals", "cavaliers",
	"commodores", "cornhuskers", "cougars", "cowboys", "crimson", "tide",
	"cyclones", "ducks", "eagles", "fighting", "irish", "gamecocks", "gators",
	"golden", "gophers", "hawkeyes", "hokies", "hoosiers", "horned", "frogs",
	"hurricanes", "huskies", "jayhawks", "knights", "longhorns", "mustangs",
	"nittany", "lions", "owls", "panthers", "rebels", "razorbacks", "rams",
	"seminoles", "sooners", "spartans", "sun", "tar", "heels", "tigers",
	"trojans", "utes", "volunteers", "wildcats", "wolfpack", "wolverines",
	"yellow", "jackets",
}

// DefaultAliases maps known multi-form names onto one canonical token.
// Keys are matched both before and after mascot stripping; values must be
// fixed points of normalization.
var DefaultAliases = map[string]string{
	"ole miss":           "mississippi",
	"mississippi rebels": "mississippi",
	"pitt":               "pittsburgh",
	"usc":                "southern california",
	"southern cal":       "southern california",
	"lsu":                "louisiana state",
	"louisiana st":       "louisiana state",
	"tcu":                "texas christian",
	"smu":                "southern methodist",
	"byu":                "brigham young",
	"ucf":                "central florida",
	"unc":                "north carolina",
	"nc state":           "north carolina state",
	"miami fl":           "miami",
	"miami (fl)":         "miami",
	"miami (oh)":         "miami ohio",
	"uconn":              "connecticut",
	"umass":              "massachusetts",
	"utsa":               "texas san antonio",
	"utep":               "texas el paso",
	"ul monroe":          "louisiana monroe",
	"app state":          "appalachian state",
	"mississippi st":     "mississippi state",
	"michigan st":        "michigan state",
	"ohio st":            "ohio state",
	"penn st":            "penn state",
	"oklahoma st":        "oklahoma state",
	"oregon st":          "oregon state",
	"washington st":      "washington state",
	"kansas st":          "kansas state",
	"iowa st":            "iowa state",
	"arizona st":         "arizona state",
	"florida st":         "florida state",
}

// DefaultCollisions are canonical tokens that must only ever match
// exactly. Without the guard, the controlled substring rule would conflate
// "Michigan" with "Central Michigan" or "Michigan State".
var DefaultCollisions = []string{
	"central michigan", "western michigan", "eastern michigan", "michigan state",
	"ohio", "ohio state", "miami ohio",
	"southern california", "california",
	"washington state", "eastern washington",
	"mississippi state", "southern mississippi",
	"florida state", "central florida", "south florida", "florida atlantic",
	"texas state", "north texas", "texas tech", "texas a&m",
	"georgia state", "georgia southern", "georgia tech",
	"virginia tech", "west virginia",
	"north carolina state", "north carolina",
	"oklahoma state", "oregon state", "kansas state", "iowa state",
	"arizona state", "michigan", "washington", "mississippi", "texas",
	"georgia", "virginia", "oklahoma", "oregon", "kansas", "iowa", "arizona",
	"florida", "colorado", "colorado state",
}

// DefaultPopularPrograms are the programs that draw picks even unranked.
var DefaultPopularPrograms = []string{
	"alabama", "ohio state", "michigan", "georgia", "texas", "oklahoma",
	"notre dame", "southern california", "florida", "florida state",
	"penn state", "louisiana state", "clemson", "oregon", "tennessee",
	"auburn", "nebraska", "wisconsin", "miami", "texas a&m",
}

// DefaultMajorConferences are the conferences whose games get the flat
// selection bonus.
var DefaultMajorConferences = []string{
	"SEC", "Big Ten", "Big 12", "ACC", "Pac-12",
}
