package board

// Deck identifies one of the two card piles.
type Deck string

const (
	DeckChance         Deck = "chance"
	DeckCommunityChest Deck = "community_chest"
)

// Effect is what a drawn card does. The set of effects is closed: only the
// types declared in this file implement it.
type Effect interface {
	isEffect()
}

// MoveTo advances forward to a fixed space, collecting the GO salary when
// the move wraps.
type MoveTo struct{ Space int }

// MoveBy moves a relative number of steps; negative steps never pay GO.
type MoveBy struct{ Steps int }

// MoveToNearest advances to the next space of Kind. Rent owed there is
// doubled for railroads and becomes ten times the dice for utilities.
type MoveToNearest struct{ Kind SpaceType }

type CollectCash struct{ Amount int }

type PayCash struct{ Amount int }

type GrantJailCard struct{}

type GoToJail struct{}

// PayPerBuilding is a repair levy on every house and hotel the drawer owns.
type PayPerBuilding struct {
	PerHouse int
	PerHotel int
}

type PayEachPlayer struct{ Amount int }

type CollectFromEachPlayer struct{ Amount int }

func (MoveTo) isEffect()                {}
func (MoveBy) isEffect()                {}
func (MoveToNearest) isEffect()         {}
func (CollectCash) isEffect()           {}
func (PayCash) isEffect()               {}
func (GrantJailCard) isEffect()         {}
func (GoToJail) isEffect()              {}
func (PayPerBuilding) isEffect()        {}
func (PayEachPlayer) isEffect()         {}
func (CollectFromEachPlayer) isEffect() {}

// Card is a single chance or community chest card.
type Card struct {
	Deck   Deck   `json:"deck"`
	Text   string `json:"text"`
	Effect Effect `json:"-"`
}

// ChanceCards returns a fresh, unshuffled chance deck.
func ChanceCards() []Card {
	return []Card{
		{DeckChance, "Advance to Boardwalk", MoveTo{Space: 39}},
		{DeckChance, "Advance to GO. Collect $200", MoveTo{Space: 0}},
		{DeckChance, "Advance to Illinois Avenue", MoveTo{Space: 24}},
		{DeckChance, "Advance to St. Charles Place", MoveTo{Space: 11}},
		{DeckChance, "Advance to the nearest Railroad", MoveToNearest{Kind: TypeRailroad}},
		{DeckChance, "Advance to the nearest Railroad", MoveToNearest{Kind: TypeRailroad}},
		{DeckChance, "Advance to the nearest Utility", MoveToNearest{Kind: TypeUtility}},
		{DeckChance, "Bank pays you dividend of $50", CollectCash{Amount: 50}},
		{DeckChance, "Get Out of Jail Free", GrantJailCard{}},
		{DeckChance, "Go Back 3 Spaces", MoveBy{Steps: -3}},
		{DeckChance, "Go to Jail", GoToJail{}},
		{DeckChance, "Make general repairs on all your property", PayPerBuilding{PerHouse: 25, PerHotel: 100}},
		{DeckChance, "Speeding fine $15", PayCash{Amount: 15}},
		{DeckChance, "Take a trip to Reading Railroad", MoveTo{Space: 5}},
		{DeckChance, "You have been elected Chairman of the Board. Pay each player $50", PayEachPlayer{Amount: 50}},
		{DeckChance, "Your building loan matures. Collect $150", CollectCash{Amount: 150}},
	}
}

// CommunityChestCards returns a fresh, unshuffled community chest deck.
func CommunityChestCards() []Card {
	return []Card{
		{DeckCommunityChest, "Advance to GO. Collect $200", MoveTo{Space: 0}},
		{DeckCommunityChest, "Bank error in your favor. Collect $200", CollectCash{Amount: 200}},
		{DeckCommunityChest, "Doctor's fee. Pay $50", PayCash{Amount: 50}},
		{DeckCommunityChest, "From sale of stock you get $50", CollectCash{Amount: 50}},
		{DeckCommunityChest, "Get Out of Jail Free", GrantJailCard{}},
		{DeckCommunityChest, "Go to Jail", GoToJail{}},
		{DeckCommunityChest, "Holiday fund matures. Receive $100", CollectCash{Amount: 100}},
		{DeckCommunityChest, "Income tax refund. Collect $20", CollectCash{Amount: 20}},
		{DeckCommunityChest, "It is your birthday. Collect $10 from every player", CollectFromEachPlayer{Amount: 10}},
		{DeckCommunityChest, "Life insurance matures. Collect $100", CollectCash{Amount: 100}},
		{DeckCommunityChest, "Pay hospital fees of $100", PayCash{Amount: 100}},
		{DeckCommunityChest, "Pay school fees of $50", PayCash{Amount: 50}},
		{DeckCommunityChest, "Receive $25 consultancy fee", CollectCash{Amount: 25}},
		{DeckCommunityChest, "You are assessed for street repairs", PayPerBuilding{PerHouse: 40, PerHotel: 115}},
		{DeckCommunityChest, "You have won second prize in a beauty contest. Collect $10", CollectCash{Amount: 10}},
		{DeckCommunityChest, "You inherit $100", CollectCash{Amount: 100}},
	}
}
