package parser

// FileRecord is a fully decoded scout file.
type FileRecord struct {
	Metadata        Metadata `json:"metadata" yaml:"metadata"`
	Game            Game     `json:"game" yaml:"game"`
	HomeTeam        Team     `json:"home_team" yaml:"home_team"`
	VisitingTeam    Team     `json:"visiting_team" yaml:"visiting_team"`
	Sets            []Set    `json:"sets" yaml:"sets"`
	HomePlayers     []Player `json:"home_players" yaml:"home_players"`
	VisitingPlayers []Player `json:"visiting_players" yaml:"visiting_players"`
	Actions         []Action `json:"actions" yaml:"actions"`
	// SkippedActions counts scout lines dropped because their code could not be
	// decoded. Always zero unless Options.SkipUndecodable is set.
	SkippedActions int `json:"skipped_actions" yaml:"skipped_actions"`
}

// Metadata holds the [3DATAVOLLEYSCOUT] section.
type Metadata struct {
	FileFormat   string      `json:"file_format" yaml:"file_format"`
	Creation     ReleaseData `json:"creation" yaml:"creation"`
	Modification ReleaseData `json:"modification" yaml:"modification"`
}

// ReleaseData describes the program that created or last changed the file.
type ReleaseData struct {
	Datetime    string `json:"datetime" yaml:"datetime"`
	IDP         string `json:"idp" yaml:"idp"`
	Program     string `json:"program" yaml:"program"`
	Version     string `json:"version" yaml:"version"`
	License     string `json:"license" yaml:"license"`
	ScouterName string `json:"scouter_name" yaml:"scouter_name"`
}

// Game holds the [3MATCH] section. All values are kept as written.
type Game struct {
	Date     string `json:"date" yaml:"date"`
	Time     string `json:"time" yaml:"time"`
	Season   string `json:"season" yaml:"season"`
	GameType string `json:"game_type" yaml:"game_type"`
}

type Team struct {
	ID               string `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	SetsWon          int    `json:"sets_won" yaml:"sets_won"`
	HeadCoach        string `json:"head_coach" yaml:"head_coach"`
	AssistantCoaches string `json:"assistant_coaches" yaml:"assistant_coaches"`
}

// SetPoints is a home/visiting score pair.
type SetPoints struct {
	Home     int `json:"home" yaml:"home"`
	Visiting int `json:"visiting" yaml:"visiting"`
}

// Set is one line of the [3SET] section. Unplayed sets have all quarters at 0-0.
type Set struct {
	Number   int       `json:"number" yaml:"number"`
	First    SetPoints `json:"first" yaml:"first"`
	Second   SetPoints `json:"second" yaml:"second"`
	Third    SetPoints `json:"third" yaml:"third"`
	Fourth   SetPoints `json:"fourth" yaml:"fourth"`
	Duration string    `json:"duration" yaml:"duration"`
}

// Played reports whether any quarter score was recorded for the set.
func (s Set) Played() bool {
	var zero SetPoints
	return s.First != zero || s.Second != zero || s.Third != zero || s.Fourth != zero
}

type Player struct {
	// TeamID refers back to the roster's team; it is not an owning link.
	TeamID   string `json:"team_id" yaml:"team_id"`
	Number   int    `json:"number" yaml:"number"`
	PlayerID string `json:"player_id" yaml:"player_id"`
	LastName string `json:"last_name" yaml:"last_name"`
	Name     string `json:"name" yaml:"name"`
}

// Action is one play-by-play line of the [3SCOUT] section.
//
// Only Code and Explanation are decoded. The remaining columns of a scout line
// are not mapped yet and stay at their zero values.
type Action struct {
	Code             string          `json:"code" yaml:"code"`
	Explanation      CodeExplanation `json:"explanation" yaml:"explanation"`
	PointPhase       string          `json:"point_phase" yaml:"point_phase"`
	AttackPhase      string          `json:"attack_phase" yaml:"attack_phase"`
	StartCoordinate  string          `json:"start_coordinate" yaml:"start_coordinate"`
	MidCoordinate    string          `json:"mid_coordinate" yaml:"mid_coordinate"`
	EndCoordinate    string          `json:"end_coordinate" yaml:"end_coordinate"`
	Time             string          `json:"time" yaml:"time"`
	Set              int             `json:"set" yaml:"set"`
	HomeRotation     int             `json:"home_rotation" yaml:"home_rotation"`
	VisitingRotation int             `json:"visiting_rotation" yaml:"visiting_rotation"`
	VideoFileNumber  int             `json:"video_file_number" yaml:"video_file_number"`
	VideoTime        string          `json:"video_time" yaml:"video_time"`
}

// CodeExplanation is the decoded form of the first six characters of an action code.
type CodeExplanation struct {
	Team         TeamSide   `json:"team" yaml:"team"`
	PlayerNumber int        `json:"player_number" yaml:"player_number"`
	Skill        Skill      `json:"skill" yaml:"skill"`
	Tempo        Tempo      `json:"tempo" yaml:"tempo"`
	Evaluation   Evaluation `json:"evaluation" yaml:"evaluation"`
}
