package board

func street(id int, name string, c Color, price, houseCost int, rent Rent) Space {
	return Space{
		ID:            id,
		Name:          name,
		Type:          TypeProperty,
		Color:         c,
		Price:         price,
		Rent:          rent,
		HouseCost:     houseCost,
		MortgageValue: price / 2,
	}
}

func railroad(id int, name string) Space {
	return Space{ID: id, Name: name, Type: TypeRailroad, Price: 200, MortgageValue: 100}
}

func utility(id int, name string) Space {
	return Space{ID: id, Name: name, Type: TypeUtility, Price: 150, MortgageValue: 75}
}

func tax(id int, name string, amount int) Space {
	return Space{ID: id, Name: name, Type: TypeTax, Tax: amount}
}

func special(id int, name string, t SpaceType) Space {
	return Space{ID: id, Name: name, Type: t}
}

var spaces = [Size]Space{
	special(0, "GO", TypeGo),
	street(1, "Mediterranean Avenue", ColorBrown, 60, 50, Rent{2, 10, 30, 90, 160, 250}),
	special(2, "Community Chest", TypeCommunityChest),
	street(3, "Baltic Avenue", ColorBrown, 60, 50, Rent{4, 20, 60, 180, 320, 450}),
	tax(4, "Income Tax", 200),
	railroad(5, "Reading Railroad"),
	street(6, "Oriental Avenue", ColorLightBlue, 100, 50, Rent{6, 30, 90, 270, 400, 550}),
	special(7, "Chance", TypeChance),
	street(8, "Vermont Avenue", ColorLightBlue, 100, 50, Rent{6, 30, 90, 270, 400, 550}),
	street(9, "Connecticut Avenue", ColorLightBlue, 120, 50, Rent{8, 40, 100, 300, 450, 600}),
	special(10, "Jail", TypeJail),
	street(11, "St. Charles Place", ColorPink, 140, 100, Rent{10, 50, 150, 450, 625, 750}),
	utility(12, "Electric Company"),
	street(13, "States Avenue", ColorPink, 140, 100, Rent{10, 50, 150, 450, 625, 750}),
	street(14, "Virginia Avenue", ColorPink, 160, 100, Rent{12, 60, 180, 500, 700, 900}),
	railroad(15, "Pennsylvania Railroad"),
	street(16, "St. James Place", ColorOrange, 180, 100, Rent{14, 70, 200, 550, 750, 950}),
	special(17, "Community Chest", TypeCommunityChest),
	street(18, "Tennessee Avenue", ColorOrange, 180, 100, Rent{14, 70, 200, 550, 750, 950}),
	street(19, "New York Avenue", ColorOrange, 200, 100, Rent{16, 80, 220, 600, 800, 1000}),
	special(20, "Free Parking", TypeFreeParking),
	street(21, "Kentucky Avenue", ColorRed, 220, 150, Rent{18, 90, 250, 700, 875, 1050}),
	special(22, "Chance", TypeChance),
	street(23, "Indiana Avenue", ColorRed, 220, 150, Rent{18, 90, 250, 700, 875, 1050}),
	street(24, "Illinois Avenue", ColorRed, 240, 150, Rent{20, 100, 300, 750, 925, 1100}),
	railroad(25, "B. & O. Railroad"),
	street(26, "Atlantic Avenue", ColorYellow, 260, 150, Rent{22, 110, 330, 800, 975, 1150}),
	street(27, "Ventnor Avenue", ColorYellow, 260, 150, Rent{22, 110, 330, 800, 975, 1150}),
	utility(28, "Water Works"),
	street(29, "Marvin Gardens", ColorYellow, 280, 150, Rent{24, 120, 360, 850, 1025, 1200}),
	special(30, "Go To Jail", TypeGoToJail),
	street(31, "Pacific Avenue", ColorGreen, 300, 200, Rent{26, 130, 390, 900, 1100, 1275}),
	street(32, "North Carolina Avenue", ColorGreen, 300, 200, Rent{26, 130, 390, 900, 1100, 1275}),
	special(33, "Community Chest", TypeCommunityChest),
	street(34, "Pennsylvania Avenue", ColorGreen, 320, 200, Rent{28, 150, 450, 1000, 1200, 1400}),
	railroad(35, "Short Line"),
	special(36, "Chance", TypeChance),
	street(37, "Park Place", ColorDarkBlue, 350, 200, Rent{35, 175, 500, 1100, 1300, 1500}),
	tax(38, "Luxury Tax", 100),
	street(39, "Boardwalk", ColorDarkBlue, 400, 200, Rent{50, 200, 600, 1400, 1700, 2000}),
}
