package pokemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pogocal/internal/model"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultResolver())
}

func TestRaidHourMultipleMegas(t *testing.T) {
	e := newTestExtractor()
	ev := model.Event{Type: "raid-hour", Name: "Mega Latias and Mega Latios Raid Hour"}

	images := e.Images(ev, Options{})
	require.Len(t, images, 2)
	assert.Equal(t, "Mega Latias", images[0].Name)
	assert.Equal(t, staticBaseURL+"latias-mega.png", images[0].URL)
	assert.Equal(t, "Mega Latios", images[1].Name)
	assert.Equal(t, staticBaseURL+"latios-mega.png", images[1].URL)
}

func TestRaidHourWithoutExtraData(t *testing.T) {
	e := newTestExtractor()
	images := e.Images(model.Event{Type: "raid-hour", Name: "Pokémon Kyogre Raid Hour"}, Options{})
	require.Len(t, images, 1)
	assert.Equal(t, "Kyogre", images[0].Name)
}

func TestRaidBattlesPrefersBosses(t *testing.T) {
	e := newTestExtractor()
	ev := model.Event{
		Type: "raid-battles",
		Name: "Lugia in 5-star Raid Battles",
		Extra: model.ExtraData{RaidBattles: &model.RaidBattles{Bosses: []model.Boss{
			{Name: "Mega Charizard Y", Image: "https://feed/charizard.png"},
			{Name: "Missingno", Image: "https://feed/missingno.png"},
		}}},
	}
	images := e.Images(ev, Options{})
	require.Len(t, images, 2)
	assert.Equal(t, staticBaseURL+"charizard-megay.png", images[0].URL)
	assert.Equal(t, "https://feed/missingno.png", images[1].URL, "unmapped boss keeps feed image")
}

func TestRaidBattlesFromTitle(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		typ, name string
		want      []Image
	}{
		{"raid-battles", "Lugia in 5-star Raid Battles", []Image{{"Lugia", staticBaseURL + "lugia.png"}}},
		{"raid-battles", "Mega Gengar in Mega Raids", []Image{{"Gengar", staticBaseURL + "gengar-mega.png"}}},
		{"raid-battles", "Shadow Mewtwo in Shadow Raids", []Image{{"Mewtwo", staticBaseURL + "mewtwo.png"}}},
		{"raid-weekend", "Kyurem Fusion Raid Weekend", []Image{{"Kyurem", staticBaseURL + "kyurem.png"}}},
		{"raid-weekend", "Shadow Ho-Oh Raid Weekend", []Image{{"Ho-Oh", staticBaseURL + "hooh.png"}}},
	}
	for _, tt := range tests {
		got := e.Images(model.Event{Type: tt.typ, Name: tt.name}, Options{})
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestRaidDay(t *testing.T) {
	e := newTestExtractor()

	images := e.Images(model.Event{Type: "raid-day", Name: "Zekrom Fusion Raid Day"}, Options{})
	require.Len(t, images, 1)
	assert.Equal(t, "Zekrom", images[0].Name)

	assert.Empty(t, e.Images(model.Event{Type: "raid-day", Name: "Shadow Raid Day"}, Options{}))
	assert.Empty(t, e.Images(model.Event{Type: "raid-day", Name: "Raid Raid Day"}, Options{}))
}

func TestMaxMondayAndMaxBattles(t *testing.T) {
	e := newTestExtractor()

	images := e.Images(model.Event{Type: "max-mondays", Name: "Dynamax Grookey during Max Monday"}, Options{})
	require.Len(t, images, 1)
	assert.Equal(t, staticBaseURL+"grookey.png", images[0].URL)

	images = e.Images(model.Event{Type: "max-battles", Name: "Gigantamax Toxtricity (Low Key Form) Max Battle Day"}, Options{})
	require.Len(t, images, 1)
	assert.Equal(t, "Gigantamax Toxtricity (Low Key Form)", images[0].Name)
	assert.Equal(t, gmaxBaseURL+"849-Low-Key-Gmax.png", images[0].URL)

	images = e.Images(model.Event{Type: "max-battles", Name: "Dynamax Scorbunny Max Battle Weekend"}, Options{})
	require.Len(t, images, 1)
	assert.Equal(t, "Scorbunny", images[0].Name)

	images = e.Images(model.Event{Type: "max-battles", Name: "Max Battle Weekend", Image: "https://feed/max.png"}, Options{})
	assert.Equal(t, []Image{{"Max Battle", "https://feed/max.png"}}, images)
}

func TestSpotlightAndCommunityDay(t *testing.T) {
	e := newTestExtractor()

	spot := model.Event{Type: "pokemon-spotlight-hour", Extra: model.ExtraData{Spotlight: &model.Spotlight{
		List: []model.SpotlightPokemon{{Name: "Plusle"}, {Name: "Minun"}},
	}}}
	images := e.Images(spot, Options{Animated: true})
	require.Len(t, images, 2)
	assert.Equal(t, animatedBaseURL+"plusle.gif", images[0].URL)

	imgOnly := model.Event{Type: "pokemon-spotlight-hour", Extra: model.ExtraData{Spotlight: &model.Spotlight{Image: "https://feed/s.png"}}}
	assert.Equal(t, []Image{{"Spotlight Pokemon", "https://feed/s.png"}}, e.Images(imgOnly, Options{}))

	cd := model.Event{Type: "community-day", Extra: model.ExtraData{CommunityDay: &model.CommunityDay{
		Spawns: []model.Spawn{{Name: "Dratini"}, {Name: ""}, {Name: "Unknownmon", Image: "https://feed/u.png"}},
	}}}
	images = e.Images(cd, Options{})
	require.Len(t, images, 2)
	assert.Equal(t, "https://feed/u.png", images[1].URL)
}

func TestShowcase(t *testing.T) {
	e := newTestExtractor()

	images := e.Images(model.Event{Type: "pokestop-showcase", Name: "Sobble and Grookey PokéStop Showcases"}, Options{})
	require.Len(t, images, 2)
	assert.Equal(t, "Grookey", images[1].Name)

	assert.Empty(t, e.Images(model.Event{Type: "pokestop-showcase", Name: "Dragon-type PokéStop Showcase"}, Options{}))
}

func TestRaidHourSubEvent(t *testing.T) {
	e := newTestExtractor()
	ev := model.Event{Type: "event", Extra: model.ExtraData{
		IsRaidHourSubEvent: true,
		RaidBattles:        &model.RaidBattles{Bosses: []model.Boss{{Name: "Dialga (Origin Forme)"}}},
	}}
	images := e.Images(ev, Options{})
	require.Len(t, images, 1)
	assert.Equal(t, staticBaseURL+"dialga-origin.png", images[0].URL)

	ev.Extra.IsRaidHourSubEvent = false
	assert.Empty(t, e.Images(ev, Options{}))
}

func TestUnknownTypeAndMultiDay(t *testing.T) {
	e := newTestExtractor()
	assert.Nil(t, e.Images(model.Event{Type: "season", Name: "Season of Light"}, Options{}))

	raid := model.Event{Type: "raid-hour", Name: "Lugia Raid Hour"}
	assert.Nil(t, e.MultiDayImages(raid, Options{}))
	assert.NotEmpty(t, e.Images(raid, Options{}))
}

func TestSpotlightBonus(t *testing.T) {
	ev := func(bonus string) model.Event {
		return model.Event{ID: "s", Type: "pokemon-spotlight-hour", Extra: model.ExtraData{Spotlight: &model.Spotlight{Bonus: bonus}}}
	}

	b, ok := SpotlightBonusOf(ev("2× Catch Stardust"))
	require.True(t, ok)
	assert.Equal(t, SpotlightBonus{Category: "catch", Type: "stardust"}, b)

	b, ok = SpotlightBonusOf(ev("2× Evolution XP"))
	require.True(t, ok)
	assert.Equal(t, SpotlightBonus{Category: "evolve", Type: "xp"}, b)

	b, ok = SpotlightBonusOf(ev("2× Transfer Candy"))
	require.True(t, ok)
	assert.Equal(t, "transfer", b.Category)

	_, ok = SpotlightBonusOf(ev("Double fun"))
	assert.False(t, ok)
	_, ok = SpotlightBonusOf(model.Event{Type: "raid-hour"})
	assert.False(t, ok)
}
