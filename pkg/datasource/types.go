package datasource

// RawQuest is one row of the quest sheet as the data pack stores it.
// Ids referencing other sheets are raw row ids; 0 means "no reference".
type RawQuest struct {
	ID       uint32   `toml:"id"`
	Name     string   `toml:"name"`
	Previous []uint32 `toml:"previous"`

	// EventIconType selects the journal icon: 3 is main scenario, 8 and 10
	// are feature ("blue") quests.
	EventIconType uint32 `toml:"event_icon_type"`
	// BlueSubtype marks main scenario icon rows that are actually feature quests.
	BlueSubtype bool `toml:"blue_subtype"`

	Repeatable bool `toml:"repeatable"`
	// Superseded is the undocumented flag set on replaced or discontinued quests.
	Superseded     bool   `toml:"superseded"`
	IssuerLocation uint32 `toml:"issuer_location"`

	Gil            uint32       `toml:"gil"`
	Rewards        []ItemReward `toml:"rewards"`
	Catalysts      []ItemReward `toml:"catalysts"`
	Optional       []ItemReward `toml:"optional"`
	OtherReward    uint32       `toml:"other_reward"`
	EmoteReward    uint32       `toml:"emote_reward"`
	ActionReward   uint32       `toml:"action_reward"`
	GeneralActions []uint32     `toml:"general_actions"`
	ClassJobUnlock uint32       `toml:"class_job_unlock"`
	InstanceUnlock uint32       `toml:"instance_unlock"`
	BeastTribe     uint32       `toml:"beast_tribe"`
	BeastRank      uint32       `toml:"beast_rank"`
	Params         []QuestParam `toml:"params"`
}

// ItemReward is a single reward, catalyst or optional item slot.
type ItemReward struct {
	Item  uint32 `toml:"item"`
	Count uint32 `toml:"count"`
	HQ    bool   `toml:"hq"`
	Stain uint32 `toml:"stain"`
}

// QuestParam is a script instruction with its argument, e.g.
// INSTANCEDUNGEON0 → 20004.
type QuestParam struct {
	Instruction string `toml:"instruction"`
	Arg         uint32 `toml:"arg"`
}

// Item is a row of the item sheet.
type Item struct {
	ID          uint32 `toml:"id"`
	Name        string `toml:"name"`
	Icon        uint32 `toml:"icon"`
	ClassJobUse uint32 `toml:"class_job_use"`
}

// Emote is a row of the emote sheet.
type Emote struct {
	ID   uint32 `toml:"id"`
	Name string `toml:"name"`
}

// Action is a row of the action sheet.
type Action struct {
	ID   uint32 `toml:"id"`
	Name string `toml:"name"`
}

// GeneralAction is a row of the general action sheet.
type GeneralAction struct {
	ID   uint32 `toml:"id"`
	Name string `toml:"name"`
}

// ClassJob is a row of the class/job sheet.
type ClassJob struct {
	ID           uint32 `toml:"id"`
	Name         string `toml:"name"`
	Abbreviation string `toml:"abbreviation"`
}

// ContentFinder is a row of the content finder condition sheet.
// Only rows with LinkType 1 (instance content) take part in unlock lookups.
type ContentFinder struct {
	ID       uint32 `toml:"id"`
	Name     string `toml:"name"`
	Content  uint32 `toml:"content"`
	LinkType uint32 `toml:"link_type"`
}

// Level is a placed object on a map, used as a quest issuer location.
type Level struct {
	ID        uint32  `toml:"id"`
	Map       uint32  `toml:"map"`
	Territory uint32  `toml:"territory"`
	X         float64 `toml:"x"`
	Y         float64 `toml:"y"`
	Z         float64 `toml:"z"`
}

// BeastTribe is a row of the beast tribe sheet.
type BeastTribe struct {
	ID   uint32 `toml:"id"`
	Name string `toml:"name"`
}

// Stain is a row of the dye sheet.
type Stain struct {
	ID   uint32 `toml:"id"`
	Name string `toml:"name"`
}

// Pack is the decoded content of one language's data pack.
type Pack struct {
	Quests         []RawQuest      `toml:"quests"`
	Items          []Item          `toml:"items"`
	Emotes         []Emote         `toml:"emotes"`
	Actions        []Action        `toml:"actions"`
	GeneralActions []GeneralAction `toml:"general_actions"`
	ClassJobs      []ClassJob      `toml:"class_jobs"`
	ContentFinder  []ContentFinder `toml:"content_finder"`
	Levels         []Level         `toml:"levels"`
	BeastTribes    []BeastTribe    `toml:"beast_tribes"`
	Stains         []Stain         `toml:"stains"`
}
