package game

import "fmt"

const (
	MinPlayers          = 2
	MaxPlayersLimit     = 8
	DefaultStartingCash = 1500
)

// Settings are the house rules of one game. They can only change in the lobby.
type Settings struct {
	MaxPlayers        int  `json:"maxPlayers" mapstructure:"max_players"`
	StartingCash      int  `json:"startingCash" mapstructure:"starting_cash"`
	AuctionEnabled    bool `json:"auctionEnabled" mapstructure:"auction_enabled"`
	EvenBuild         bool `json:"evenBuild" mapstructure:"even_build"`
	UnlimitedBuilding bool `json:"unlimitedBuilding" mapstructure:"unlimited_building"`
	NoRentInJail      bool `json:"noRentInJail" mapstructure:"no_rent_in_jail"`
	SpeedDie          bool `json:"speedDie" mapstructure:"speed_die"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:     MaxPlayersLimit,
		StartingCash:   DefaultStartingCash,
		AuctionEnabled: true,
		EvenBuild:      true,
	}
}

func (s Settings) Validate() error {
	if s.MaxPlayers < MinPlayers || s.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("%w: max players must be between %d and %d", ErrInvalidSettings, MinPlayers, MaxPlayersLimit)
	}
	if s.StartingCash <= 0 {
		return fmt.Errorf("%w: starting cash must be positive", ErrInvalidSettings)
	}
	return nil
}
