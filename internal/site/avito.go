package site

import (
	"github.com/apartsfinder/afind/internal/driver"
	"github.com/apartsfinder/afind/pkg/models"
)

const (
	avitoListingLink = "link-link-MbQDP"
	avitoFilterForm  = "//*[@id=\"app\"]/div[3]/div[3]/div[1]/div/div[2]/div[1]/form"
	avitoRoomsList   = avitoFilterForm + "/div[4]/div/div[2]/div/div/div/div/ul"
	avitoPriceLabels = "/html/body/div[1]/div[3]/div[3]/div[1]/div/div[2]/div[1]/form/div[5]/div/div[2]/div/div/div/div/div/div"
)

// Avito is the Saint Petersburg apartments section of avito.ru
var Avito = Descriptor{
	Key:       "avito",
	URL:       "https://www.avito.ru/sankt-peterburg/kvartiry",
	Container: driver.ClassName("iva-item-root-Nj_hb"),
	Fields: map[models.Field]FieldLocator{
		models.FieldName:    {Locator: driver.ClassName(avitoListingLink), Attribute: "title"},
		models.FieldURL:     {Locator: driver.ClassName(avitoListingLink), Attribute: "href"},
		models.FieldPrice:   {Locator: driver.ClassName("price-text-E1Y7h")},
		models.FieldAddress: {Locator: driver.ClassName("geo-address-QTv9k")},
	},
	CategoryAt: driver.XPath("//*[@id=\"app\"]/div[3]/div[3]/div[1]/div/div[1]/ul/li/ul/li[5]/div/a"),
	Rooms: map[int]driver.Locator{
		0: driver.XPath(avitoRoomsList + "/li[1]/label"),
		1: driver.XPath(avitoRoomsList + "/li[2]/label"),
		2: driver.XPath(avitoRoomsList + "/li[3]/label"),
		3: driver.XPath(avitoRoomsList + "/li[4]/label"),
		4: driver.XPath(avitoRoomsList + "/li[5]/label"),
		5: driver.XPath(avitoRoomsList + "/li[6]/label"),
	},
	PriceLower: driver.XPath(avitoPriceLabels + "/label[1]"),
	PriceUpper: driver.XPath(avitoPriceLabels + "/label[2]"),
	Apply:      driver.XPath("//*[@id=\"app\"]/div[3]/div[3]/div[1]/div/div[2]/div[2]/div/button[1]"),
}
