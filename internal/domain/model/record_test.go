package model_test

import (
	"testing"

	model "github.com/okian/chartrec/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestIsSameChart(t *testing.T) {
	convey.Convey("Given two records", t, func() {
		a := model.Record{SongID: "S1", DifficultyLevel: "MASTER", AchievementRate: 900000}

		convey.Convey("When song and difficulty match", func() {
			b := model.Record{SongID: "S1", DifficultyLevel: "MASTER", AchievementRate: 1}

			convey.Convey("Then they refer to the same chart regardless of rate", func() {
				convey.So(model.IsSameChart(a, b), convey.ShouldBeTrue)
				convey.So(model.IsSameChart(b, a), convey.ShouldBeTrue)
				convey.So(a.Key(), convey.ShouldResemble, b.Key())
			})
		})

		convey.Convey("When the difficulty differs", func() {
			b := model.Record{SongID: "S1", DifficultyLevel: "EXPERT"}
			convey.So(model.IsSameChart(a, b), convey.ShouldBeFalse)
		})

		convey.Convey("When the song differs", func() {
			b := model.Record{SongID: "S2", DifficultyLevel: "MASTER"}
			convey.So(model.IsSameChart(a, b), convey.ShouldBeFalse)
		})

		convey.Convey("When identifiers differ only by case or whitespace", func() {
			convey.So(model.IsSameChart(a, model.Record{SongID: "s1", DifficultyLevel: "MASTER"}), convey.ShouldBeFalse)
			convey.So(model.IsSameChart(a, model.Record{SongID: "S1", DifficultyLevel: "master"}), convey.ShouldBeFalse)
			convey.So(model.IsSameChart(a, model.Record{SongID: "S1 ", DifficultyLevel: "MASTER"}), convey.ShouldBeFalse)
		})
	})
}

func TestCollection(t *testing.T) {
	convey.Convey("Given a collection of three records", t, func() {
		c := model.Collection{
			{SongID: "S1", DifficultyLevel: "I", AchievementRate: 1},
			{SongID: "S2", DifficultyLevel: "II", AchievementRate: 2},
			{SongID: "S3", DifficultyLevel: "III", AchievementRate: 3},
		}

		convey.Convey("When looking up an existing chart", func() {
			r, ok := c.Find(model.ChartKey{SongID: "S2", DifficultyLevel: "II"})
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.AchievementRate, convey.ShouldEqual, 2)
			convey.So(c.Index(r.Key()), convey.ShouldEqual, 1)
		})

		convey.Convey("When looking up a missing chart", func() {
			_, ok := c.Find(model.ChartKey{SongID: "S9", DifficultyLevel: "I"})
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When removing the middle record", func() {
			out, removed := c.Without(model.ChartKey{SongID: "S2", DifficultyLevel: "II"})

			convey.Convey("Then the others keep their order and the input is untouched", func() {
				convey.So(removed, convey.ShouldBeTrue)
				convey.So(out, convey.ShouldHaveLength, 2)
				convey.So(out[0].SongID, convey.ShouldEqual, "S1")
				convey.So(out[1].SongID, convey.ShouldEqual, "S3")
				convey.So(c, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When cloning", func() {
			cp := c.Clone()
			cp[0].AchievementRate = 99
			convey.So(c[0].AchievementRate, convey.ShouldEqual, 1)
		})

		convey.Convey("When cloning a nil collection", func() {
			var empty model.Collection
			convey.So(empty.Clone(), convey.ShouldNotBeNil)
			convey.So(empty.Clone(), convey.ShouldHaveLength, 0)
		})
	})
}

func TestSong(t *testing.T) {
	convey.Convey("Given a song with two charts", t, func() {
		s := model.Song{
			ID:     "S1",
			Title:  map[string]string{model.DefaultLocale: "Song One"},
			Artist: "Artist",
			Charts: []model.Chart{
				{DifficultyLevel: "III", DifficultyDecimal: 9.5},
				{DifficultyLevel: "IV", DifficultyDecimal: 12.1},
			},
		}

		convey.So(s.DisplayTitle(), convey.ShouldEqual, "Song One")

		c, ok := s.Chart("IV")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(c.DifficultyDecimal, convey.ShouldEqual, 12.1)

		_, ok = s.Chart("iv")
		convey.So(ok, convey.ShouldBeFalse)

		convey.Convey("Then a song without a default title shows its ID", func() {
			convey.So(model.Song{ID: "bare"}.DisplayTitle(), convey.ShouldEqual, "bare")
		})
	})
}
