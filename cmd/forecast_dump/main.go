package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/angas/aircast-go/aqi"
	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/hours"
)

func main() {
	city := flag.String("city", "", "city id, empty lists the supported cities")
	flag.Parse()

	provider, err := forecast.NewStaticProvider()
	if err != nil {
		panic(err)
	}

	if *city == "" {
		for _, c := range provider.SupportedCities() {
			fmt.Printf("%-10s %s\n", c.ID, c.DisplayName)
		}
		return
	}

	hourly, err := provider.HourlySeries(*city)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	weekly, err := provider.WeeklySeries(*city)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Hour   NO2     O3      AQI  Band            Temp   Hum")
	for _, s := range hourly {
		band, err := aqi.Classify(s.AQI)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s  %6.1f  %6.1f  %3d  %-14s  %5.1f  %3.0f%%\n",
			hours.OffsetLabel(s.TimeOffsetHours), s.NO2, s.O3, s.AQI, band.DisplayName, s.TemperatureC, s.HumidityPct)
	}

	fmt.Println()
	fmt.Println("Day  Avg    Peak")
	for _, w := range weekly {
		fmt.Printf("%s  %5.1f  %5.1f\n", w.Day, w.AvgAQI, w.PeakAQI)
	}
}
