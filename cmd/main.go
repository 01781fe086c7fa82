package main

import (
	"github.com/webshop-labs/checkout/internal/app"
	"github.com/webshop-labs/checkout/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
